/*
 * main_test.go, part of trpprep
 *
 * Copyright 2024 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/trpprep/internal/config"
	"github.com/rmera/trpprep/vmd"
)

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	if a.stderr == nil {
		a.stderr = &out
	}
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCmd(t *testing.T) {
	var stdout bytes.Buffer
	a := &app{v: viper.New(), stderr: &bytes.Buffer{}}
	cmd := newRootCmd(a)
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"config"})
	require.NoError(t, cmd.Execute())
	got, err := config.Read(&stdout)
	require.NoError(t, err)
	if diff := cmp.Diff(config.Default(), got); diff != "" {
		t.Errorf("default settings (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "trpprep.yaml")
	require.NoError(t, os.WriteFile(file, []byte("build:\n  salt: 0.3\n"), 0o644))
	stdout.Reset()
	a = &app{v: viper.New(), stderr: &bytes.Buffer{}}
	cmd = newRootCmd(a)
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"config", "-c", file, "--vmd", "/opt/vmd/bin/vmd", "-w", dir})
	require.NoError(t, cmd.Execute())
	got, err = config.Read(&stdout)
	require.NoError(t, err)
	assert.Equal(t, 0.3, got.Build.Salt)
	assert.Equal(t, "/opt/vmd/bin/vmd", got.VMD.Command)
	assert.Equal(t, dir, got.WorkDir)

	t.Setenv("TRPPREP_BUILD_ROTATE", "10")
	t.Setenv("TRPPREP_BUILD_SALT", "0.5")
	stdout.Reset()
	cmd = newRootCmd(&app{v: viper.New(), stderr: &bytes.Buffer{}})
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"config", "-c", file})
	require.NoError(t, cmd.Execute())
	got, err = config.Read(&stdout)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Build.Rotate)
	assert.Equal(t, 0.5, got.Build.Salt)
	assert.Equal(t, config.Default().Build.Padding, got.Build.Padding)

	_, err = execute(t, &app{v: viper.New()}, "config", "-c", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

const fepout = `#Free energy change for lambda window [ 0.9 0.95 ] is 1.0 ; net change until now is 2.0
#NEW FEP WINDOW: LAMBDA SET TO 0.95 LAMBDA2 1
FepEnergy:       100     -1234.5678     -1234.0000      -50.0000      -49.5000        0.5678        0.5678      300.0000        0.5678
`

func TestFEPCmd(t *testing.T) {
	_, err := execute(t, &app{v: viper.New()}, "fep", "only_one.fepout")
	assert.Error(t, err)

	dir := t.TempDir()
	var files []string
	for _, n := range []string{"forward.fepout", "backward.fepout"} {
		f := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(f, []byte(fepout), 0o644))
		files = append(files, f)
	}
	rec := &vmd.Recorder{}
	out := filepath.Join(dir, "fixed")
	_, err = execute(t, &app{v: viper.New(), runner: rec}, "fep", files[0], files[1], "-o", out)
	require.NoError(t, err)
	assert.Equal(t, []string{"parsefep"}, rec.Names())
	data, err := os.ReadFile(filepath.Join(out, "forward.fepout"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "#Free energy change for lambda window [ 0.95 1 ] is 0.5678 ; net change until now is 2.5678\n"))
	assert.FileExists(t, filepath.Join(out, "backward.fepout"))
}

func entryXML(acc, name, seq string, begin, end int) string {
	return fmt.Sprintf(`<entry><accession>%s</accession><name>%s</name>
<organism><name type="scientific">Homo sapiens</name></organism>
<feature type="transmembrane region" description="Helical"><location><begin position="%d"/><end position="%d"/></location></feature>
<sequence length="%d">%s</sequence></entry>`, acc, name, begin, end, len(seq), seq)
}

func TestTailsCmd(t *testing.T) {
	const sq = "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQAPILSRVGDGTQDNLSGAEKAVQVKVK"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var entry string
		switch r.URL.Path {
		case "/search":
			entry = entryXML("Q2", "TRPB_HUMAN", sq, 20, 30)
		case "/Q1.xml":
			entry = entryXML("Q1", "TRPA_HUMAN", sq, 10, 15)
		default:
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<?xml version="1.0"?><uniprot xmlns="http://uniprot.org/uniprot">%s</uniprot>`, entry)
	}))
	defer srv.Close()

	dir := t.TempDir()
	file := filepath.Join(dir, "trpprep.yaml")
	conf := fmt.Sprintf("tails:\n  base_url: %s\n  extra: [Q1]\n  after: 5\n", srv.URL)
	require.NoError(t, os.WriteFile(file, []byte(conf), 0o644))
	_, err := execute(t, &app{v: viper.New()}, "tails", "-c", file, "-w", dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "trp_tails.fasta"))
	require.NoError(t, err)
	var names, seqs []string
	for _, l := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if strings.HasPrefix(l, ">") {
			names = append(names, strings.TrimSpace(l[1:]))
			seqs = append(seqs, "")
			continue
		}
		seqs[len(seqs)-1] += strings.TrimSpace(l)
	}
	assert.Equal(t, []string{"TRPA_HUMAN", "TRPB_HUMAN"}, names)
	assert.Equal(t, []string{sq[4:20], sq[14:35]}, seqs)

	_, err = execute(t, &app{v: viper.New()}, "tails", "-c", file, "-w", dir, "-o", "out.fasta")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "out.fasta"))
}
