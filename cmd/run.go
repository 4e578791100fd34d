/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/profile"

	"github.com/spf13/cobra"

	"github.com/notargets/gorans/InputParameters"
	"github.com/notargets/gorans/mesh"
	"github.com/notargets/gorans/solver"
	"github.com/notargets/gorans/thermo"
)

type ModelRANS struct {
	ICFile  string
	Graph   bool
	Delay   time.Duration
	Cells   int
	Profile bool
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Compressible flow solver with pluggable turbulence closures",
	Long:  `Compressible flow solver with pluggable turbulence closures`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("run called")
		m := &ModelRANS{}
		if m.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		m.Graph, _ = cmd.Flags().GetBool("graph")
		m.Cells, _ = cmd.Flags().GetInt("cells")
		dr, _ := cmd.Flags().GetInt("delay")
		m.Delay = time.Duration(time.Duration(dr) * time.Millisecond)
		m.Profile, _ = cmd.Flags().GetBool("profile")
		ip := processInput(m)
		RunModel(m, ip)
	},
}

var exampleFile = `
########################################
Title: "Flat Plate"
Physics: RANS     # Can be "Euler"
Turbulence: SA    # Can be "KW" or "Off"
FluxType: Roe     # Can be "Centered"
Limiter: MinMod   # Can be "VanAlbada" or empty
CFL: 5.
MaxIterations: 2000
BCLeft: Wall
BCRight: Farfield
Mesh:
  Cells: 200
  Length: 1.
  Stretch: 1.05
########################################
`

func processInput(m *ModelRANS) (ip *InputParameters.Parameters) {
	var (
		err error
	)
	if len(m.ICFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = ioutil.ReadFile(m.ICFile); err != nil {
		panic(err)
	}
	ip = InputParameters.NewParameters()
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- CFL\n\t- Turbulence closure")
	RunCmd.Flags().BoolP("graph", "g", false, "display a graph while computing solution")
	RunCmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
	RunCmd.Flags().IntP("cells", "k", 0, "override the cell count in the input file")
	RunCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}

func RunModel(m *ModelRANS, ip *InputParameters.Parameters) {
	if m.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	if m.Cells > 0 {
		ip.Mesh.Cells = m.Cells
	}
	ip.Print()
	msh := mesh.NewLine(ip.Mesh.Cells, ip.Mesh.Length, ip.Mesh.Stretch)
	th := thermo.NewPerfectGas(ip.Gamma, ip.R, ip.Prandtl, ip.PrandtlTurbulent)
	st := solver.New(ip.Solver, ip, msh, th)
	st.Run(m.Graph, m.Delay)
}
