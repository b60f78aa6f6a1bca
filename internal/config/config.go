/*
 * config.go, part of trpprep
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

// Package config holds the settings of every trpprep task. Settings are read
// from a YAML file through viper, on top of the defaults in Default, and
// can be overridden by environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	prep "github.com/rmera/trpprep"
)

// VMD sets how the host application is started.
type VMD struct {
	// Command is the VMD executable
	Command string `yaml:"command" mapstructure:"command"`
	// Args are passed to VMD before the script name
	Args []string `yaml:"args" mapstructure:"args"`
}

// SegmentRange is a range of residues of each chain that becomes one psfgen segment,
// named after the chain plus Suffix.
type SegmentRange struct {
	First  int    `yaml:"first" mapstructure:"first"`
	Last   int    `yaml:"last" mapstructure:"last"`
	Suffix string `yaml:"suffix" mapstructure:"suffix"`
}

// ResidueAlias is a psfgen residue name alias.
type ResidueAlias struct {
	From string `yaml:"from" mapstructure:"from"`
	To   string `yaml:"to" mapstructure:"to"`
}

// AtomAlias is a psfgen atom name alias within a residue.
type AtomAlias struct {
	ResName string `yaml:"resname" mapstructure:"resname"`
	From    string `yaml:"from" mapstructure:"from"`
	To      string `yaml:"to" mapstructure:"to"`
}

// Ion is an ion placed by hand in the model.
type Ion struct {
	ResName  string     `yaml:"resname" mapstructure:"resname"`
	Name     string     `yaml:"name" mapstructure:"name"` //the atom name, the residue name if empty.
	Position [3]float64 `yaml:"position" mapstructure:"position"`
}

// Membrane is a lipid bilayer patch built by the membrane plugin.
type Membrane struct {
	Lipid    string  `yaml:"lipid" mapstructure:"lipid"`
	X        float64 `yaml:"x" mapstructure:"x"`
	Y        float64 `yaml:"y" mapstructure:"y"`
	Topology string  `yaml:"topology" mapstructure:"topology"` //c27 or c36
}

// Build has the settings of the model builder.
type Build struct {
	Template       string         `yaml:"template" mapstructure:"template"`
	Topology       string         `yaml:"topology" mapstructure:"topology"`
	Rotate         float64        `yaml:"rotate" mapstructure:"rotate"` //degrees around z
	Chains         []string       `yaml:"chains" mapstructure:"chains"`
	Segments       []SegmentRange `yaml:"segments" mapstructure:"segments"`
	ResidueAliases []ResidueAlias `yaml:"residue_aliases" mapstructure:"residue_aliases"`
	AtomAliases    []AtomAlias    `yaml:"atom_aliases" mapstructure:"atom_aliases"`
	First          string         `yaml:"first" mapstructure:"first"` //patch for the N-terminus of each segment
	Last           string         `yaml:"last" mapstructure:"last"`
	IonSegment     string         `yaml:"ion_segment" mapstructure:"ion_segment"`
	Ions           []Ion          `yaml:"ions" mapstructure:"ions"`
	Membrane       Membrane       `yaml:"membrane" mapstructure:"membrane"`
	// Transmembrane is the residue range (first and last) the membrane is centered on.
	Transmembrane [2]int `yaml:"transmembrane" mapstructure:"transmembrane"`
	// LipidPore is the radius of the cylinder around z cleared of lipids.
	LipidPore float64 `yaml:"lipid_pore" mapstructure:"lipid_pore"`
	// WaterPore is the radius of the cylinder around z where solvate's water is kept inside the membrane.
	WaterPore float64 `yaml:"water_pore" mapstructure:"water_pore"`
	Padding   float64 `yaml:"padding" mapstructure:"padding"`   //water above and below the protein, Å
	Boundary  float64 `yaml:"boundary" mapstructure:"boundary"` //solvate -b
	Salt      float64 `yaml:"salt" mapstructure:"salt"`         //mol/L
	// Output is the prefix of the final, ionized, system.
	Output string `yaml:"output" mapstructure:"output"`
	// TmpDir is where the intermediate files go. A new directory is created if empty.
	TmpDir string `yaml:"tmpdir" mapstructure:"tmpdir"`
}

// Constraints has the settings for the positional restraint files.
type Constraints struct {
	PSF    string `yaml:"psf" mapstructure:"psf"`
	Coords string `yaml:"coords" mapstructure:"coords"` //PDB or NAMD binary
	Output string `yaml:"output" mapstructure:"output"` //directory
	// TailNames are the names of the lipid atoms that are not restrained in tails_only.pdb.
	TailNames []string `yaml:"tail_names" mapstructure:"tail_names"`
}

// MDFF has the settings for the MDFF potential and restraints.
type MDFF struct {
	PSF         string  `yaml:"psf" mapstructure:"psf"`
	PDB         string  `yaml:"pdb" mapstructure:"pdb"`
	TemplatePSF string  `yaml:"template_psf" mapstructure:"template_psf"`
	TemplatePDB string  `yaml:"template_pdb" mapstructure:"template_pdb"`
	Selection   string  `yaml:"selection" mapstructure:"selection"` //VMD selection of the template used for the map
	Resolution  float64 `yaml:"resolution" mapstructure:"resolution"`
	Prefix      string  `yaml:"prefix" mapstructure:"prefix"`
}

// FEP has the settings for the FEP output repair.
type FEP struct {
	Output string `yaml:"output" mapstructure:"output"`
}

// Collector is a distance between the centers of two selections.
type Collector struct {
	Name string         `yaml:"name" mapstructure:"name"`
	A    prep.Selection `yaml:"a" mapstructure:"a"`
	B    prep.Selection `yaml:"b" mapstructure:"b"`
}

// Distances has the settings for the distance collection over trajectories.
type Distances struct {
	PSF      string   `yaml:"psf" mapstructure:"psf"`
	Prefixes []string `yaml:"prefixes" mapstructure:"prefixes"`
	// Trajectories are read in order for each prefix, which replaces {prefix} in them.
	Trajectories []string    `yaml:"trajectories" mapstructure:"trajectories"`
	Output       string      `yaml:"output" mapstructure:"output"` //{prefix} is replaced as above
	Collectors   []Collector `yaml:"collectors" mapstructure:"collectors"`
	Plot         bool        `yaml:"plot" mapstructure:"plot"`
	Workers      int         `yaml:"workers" mapstructure:"workers"` //0 means one per CPU
	Bins         int         `yaml:"bins" mapstructure:"bins"`       //histogram bins, no histograms if 0
}

// Tails has the settings for the download of the C-terminal tails.
type Tails struct {
	BaseURL    string         `yaml:"base_url" mapstructure:"base_url"`
	Query      string         `yaml:"query" mapstructure:"query"`
	Extra      []string       `yaml:"extra" mapstructure:"extra"`
	Before     int            `yaml:"before" mapstructure:"before"`
	After      int            `yaml:"after" mapstructure:"after"`
	Override   map[string]int `yaml:"override" mapstructure:"override"`
	Output     string         `yaml:"output" mapstructure:"output"`
	PageSize   int            `yaml:"page_size" mapstructure:"page_size"`
	TimeoutSec int            `yaml:"timeout" mapstructure:"timeout"`
}

// Config has the settings of all the tasks.
type Config struct {
	VMD         VMD         `yaml:"vmd" mapstructure:"vmd"`
	WorkDir     string      `yaml:"workdir" mapstructure:"workdir"`
	Build       Build       `yaml:"build" mapstructure:"build"`
	Constraints Constraints `yaml:"constraints" mapstructure:"constraints"`
	MDFF        MDFF        `yaml:"mdff" mapstructure:"mdff"`
	FEP         FEP         `yaml:"fep" mapstructure:"fep"`
	Distances   Distances   `yaml:"distances" mapstructure:"distances"`
	Tails       Tails       `yaml:"tails" mapstructure:"tails"`
}

// Default returns the settings used for the TRPV1 system.
func Default() *Config {
	return &Config{
		VMD:     VMD{Command: "vmd", Args: []string{"-dispdev", "text", "-e"}},
		WorkDir: ".",
		Build: Build{
			Template: "../structures/3j5p.pdb",
			Topology: "/usr/lib/vmd/plugins/noarch/tcl/readcharmmtop1.1/top_all27_prot_lipid_na.inp",
			Rotate:   -35,
			Chains:   []string{"A", "B", "C", "D"},
			Segments: []SegmentRange{
				{First: 393, Last: 502, Suffix: "1"},
				{First: 508, Last: 719, Suffix: "2"},
			},
			ResidueAliases: []ResidueAlias{{From: "HIS", To: "HSE"}},
			AtomAliases: []AtomAlias{
				{ResName: "ILE", From: "CD1", To: "CD"},
				{ResName: "ALA", From: "OXT", To: "NT"}, //the nitrogen of the CT3 patch
			},
			First:      "ACE",
			Last:       "CT3",
			IonSegment: "NA",
			Ions: []Ion{
				{ResName: "SOD", Position: [3]float64{0, 0, -33.5}},
				{ResName: "SOD", Position: [3]float64{0, 0, -37}},
			},
			Membrane:      Membrane{Lipid: "POPC", X: 130, Y: 130, Topology: "c27"},
			Transmembrane: [2]int{393, 719},
			LipidPore:     20,
			WaterPore:     10,
			Padding:       15,
			Boundary:      1.5,
			Salt:          0.2,
			Output:        "initial",
		},
		Constraints: Constraints{
			PSF:       "initial.psf",
			Coords:    "00_minimize/00_minimize.coor",
			Output:    ".",
			TailNames: []string{"N", "C1[1-5]", "H[1-5][0-9]", "P1", "O."},
		},
		MDFF: MDFF{
			PSF:         "initial.psf",
			PDB:         "initial.pdb",
			TemplatePSF: "../template.psf",
			TemplatePDB: "../template.pdb",
			Selection:   "protein",
			Resolution:  5,
			Prefix:      "mdff",
		},
		FEP: FEP{Output: "fixed"},
		Distances: Distances{
			PSF:          "../initial.psf",
			Prefixes:     []string{"simulation_A", "simulation_B"},
			Trajectories: []string{"../{prefix}/{prefix}.dcd"},
			Output:       "distances/{prefix}.dat",
			Collectors: []Collector{
				{
					Name: "N52-GLU1589",
					A:    prep.Selection{ResName: []string{"A2F"}, Names: []string{"N52B"}},
					B:    prep.Selection{Class: "protein", Resid: []int{1589}, Names: []string{"CD"}},
				},
				{
					Name: "N49-GLU1534",
					A:    prep.Selection{ResName: []string{"A2F"}, Names: []string{"N49B"}},
					B:    prep.Selection{Class: "protein", Resid: []int{1534}, Names: []string{"CD"}},
				},
			},
		},
		Tails: Tails{
			BaseURL:    "https://rest.uniprot.org/uniprotkb",
			Query:      `protein_name:"Transient receptor potential" AND reviewed:true AND organism_id:9606`,
			Extra:      []string{"A8EVM5", "A0L5S6", "Q9P0L9", "Q9NZM6"},
			Before:     5,
			After:      40,
			Override:   map[string]int{"TRPM1_HUMAN": 2},
			Output:     "trp_tails.fasta",
			PageSize:   100,
			TimeoutSec: 120,
		},
	}
}

// Keys returns the viper key of every setting, like "build.rotate", sorted as
// the fields of Config. Lists and maps are single settings.
func Keys() []string {
	return keys("", reflect.TypeOf(Config{}))
}

func keys(prefix string, t reflect.Type) []string {
	var ret []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + strings.Split(f.Tag.Get("mapstructure"), ",")[0]
		if f.Type.Kind() == reflect.Struct {
			ret = append(ret, keys(key+".", f.Type)...)
			continue
		}
		ret = append(ret, key)
	}
	return ret
}

// BindEnv makes v read every setting from an environment variable named after
// its key, with the given prefix: PREFIX_BUILD_ROTATE for build.rotate. viper
// only looks up the environment for the keys it knows, so all are bound.
func BindEnv(v *viper.Viper, prefix string) error {
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range Keys() {
		if err := v.BindEnv(k); err != nil {
			return fmt.Errorf("binding %s to the environment: %w", k, err)
		}
	}
	return nil
}

// Load returns the default settings overridden by those read by v, which can
// come from a configuration file, the environment or bound flags.
func Load(v *viper.Viper) (*Config, error) {
	c := Default()
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}
	//lists in the file replace the default ones instead of being merged with them.
	if err := v.Unmarshal(c, func(dc *mapstructure.DecoderConfig) { dc.ZeroFields = true }); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := c.Check(); err != nil {
		return nil, fmt.Errorf("Check: %w", err)
	}
	return c, nil
}

// Read decodes a YAML document on top of the default settings. Unknown keys are an error.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Check(); err != nil {
		return nil, fmt.Errorf("Check: %w", err)
	}
	return c, nil
}

// Write encodes the settings as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Check checks if the settings are usable. It returns an error for the first field
// that doesn't meet the requirements.
func (c *Config) Check() error {
	if c.VMD.Command == "" {
		return fmt.Errorf("vmd.command can't be empty")
	}
	b := c.Build
	if len(b.Chains) == 0 {
		return fmt.Errorf("build.chains can't be empty")
	}
	if len(b.Segments) == 0 {
		return fmt.Errorf("build.segments can't be empty")
	}
	seen := make(map[string]bool)
	for _, s := range b.Segments {
		if s.First > s.Last {
			return fmt.Errorf("build.segments: first residue %d after last %d", s.First, s.Last)
		}
		if seen[s.Suffix] {
			return fmt.Errorf("build.segments: repeated suffix %q", s.Suffix)
		}
		seen[s.Suffix] = true
		for _, ch := range b.Chains {
			if len(ch+s.Suffix) > 4 {
				return fmt.Errorf("build.segments: segment name %q longer than 4 characters", ch+s.Suffix)
			}
		}
	}
	if b.Transmembrane[0] > b.Transmembrane[1] {
		return fmt.Errorf("build.transmembrane: first residue %d after last %d", b.Transmembrane[0], b.Transmembrane[1])
	}
	if len(b.Ions) > 0 && b.IonSegment == "" {
		return fmt.Errorf("build.ion_segment can't be empty if ions are given")
	}
	for _, ion := range b.Ions {
		if ion.ResName == "" {
			return fmt.Errorf("build.ions: every ion needs a resname")
		}
	}
	if b.Membrane.X <= 0 || b.Membrane.Y <= 0 {
		return fmt.Errorf("build.membrane: the patch size must be positive")
	}
	if b.LipidPore < 0 || b.WaterPore < 0 || b.Padding < 0 || b.Boundary < 0 {
		return fmt.Errorf("build: lipid_pore, water_pore, padding and boundary can't be negative")
	}
	if b.Salt < 0 {
		return fmt.Errorf("build.salt can't be negative")
	}
	for _, n := range c.Constraints.TailNames {
		if _, err := regexp.Compile(n); err != nil {
			return fmt.Errorf("constraints.tail_names: %w", err)
		}
	}
	if c.MDFF.Resolution <= 0 {
		return fmt.Errorf("mdff.resolution must be positive")
	}
	names := make(map[string]bool)
	for _, col := range c.Distances.Collectors {
		if col.Name == "" || names[col.Name] {
			return fmt.Errorf("distances.collectors: empty or repeated name %q", col.Name)
		}
		names[col.Name] = true
		if _, err := col.A.Selector(); err != nil {
			return fmt.Errorf("distances.collectors %s: %w", col.Name, err)
		}
		if _, err := col.B.Selector(); err != nil {
			return fmt.Errorf("distances.collectors %s: %w", col.Name, err)
		}
	}
	if len(c.Distances.Trajectories) == 0 {
		return fmt.Errorf("distances.trajectories can't be empty")
	}
	if c.Distances.Workers < 0 {
		return fmt.Errorf("distances.workers can't be negative")
	}
	if c.Distances.Bins < 0 {
		return fmt.Errorf("distances.bins can't be negative")
	}
	if c.Tails.Before < 0 || c.Tails.After < 0 {
		return fmt.Errorf("tails: before and after can't be negative")
	}
	for name, n := range c.Tails.Override {
		if n < 1 {
			return fmt.Errorf("tails.override %s: regions are counted from 1", name)
		}
	}
	return nil
}
