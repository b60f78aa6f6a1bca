/*
 * root.go, part of trpprep
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
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmera/trpprep/internal/config"
	"github.com/rmera/trpprep/internal/ctxlog"
	"github.com/rmera/trpprep/vmd"
)

// app has what the subcommands share.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	stderr io.Writer
	runner vmd.Runner //an Exec with the configured VMD is used if nil.
}

// path returns p relative to the configured work directory, unless it is absolute.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.cfg.WorkDir, p)
}

// setup loads the configuration and puts the logger in the context of cmd.
func (a *app) setup(cmd *cobra.Command) error {
	if f, _ := cmd.Flags().GetString("config"); f != "" {
		a.v.SetConfigFile(f)
	}
	if err := config.BindEnv(a.v, "TRPPREP"); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := ctxlog.New(a.stderr, verbose)
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), log))
	if a.runner == nil {
		a.runner = &vmd.Exec{Command: cfg.VMD.Command, Args: cfg.VMD.Args, Dir: cfg.WorkDir}
	}
	log.Debug("Configuration loaded", "file", a.v.ConfigFileUsed(), "workdir", cfg.WorkDir, "vmd", cfg.VMD.Command)
	return nil
}

// bind adds a flag bound to the configuration key key. The default of the flag must be
// the default of the key, as viper falls back to it.
func (a *app) bind(cmd *cobra.Command, flag, key string) {
	a.v.BindPFlag(key, cmd.Flags().Lookup(flag))
}

func newRootCmd(a *app) *cobra.Command {
	def := config.Default()
	root := &cobra.Command{
		Use:   "trpprep",
		Short: "Prepare and analyze MD simulations of a TRP channel",
		Long: `Prepare and analyze MD simulations of a TRP channel.

Building the system and the MDFF and FEP steps run VMD in text mode. Settings
are read from a YAML file (--config) on top of the built-in defaults, and can
be overridden with flags or TRPPREP_* environment variables. Relative paths
in the settings are taken from the work directory.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "YAML configuration file")
	pf.String("vmd", def.VMD.Command, "VMD executable")
	pf.StringP("workdir", "w", def.WorkDir, "work directory")
	pf.BoolP("verbose", "v", false, "print debugging messages")
	a.v.BindPFlag("vmd.command", pf.Lookup("vmd"))
	a.v.BindPFlag("workdir", pf.Lookup("workdir"))

	root.AddCommand(
		newBuildCmd(a),
		newConstraintsCmd(a),
		newMDFFCmd(a),
		newFEPCmd(a),
		newDistancesCmd(a),
		newTailsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// newConfigCmd prints the settings in use.
func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the settings in use, as YAML",
		Long: `Print the settings in use, as YAML. The output is a valid configuration
file, a good start for a new one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cfg.Write(cmd.OutOrStdout())
		},
	}
}
