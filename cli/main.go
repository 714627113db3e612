package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/nat-n/piper"
	"github.com/nat-n/qem"
)

/* Commands:
 * load
 * load-json
 * weld
 * config
 * ratio
 * target
 * aggressiveness
 * free-border
 * simplify
 * lossless
 * report
 * save
 * save-json
 */

// session is the data passed between pipeline stages.
type session struct {
	mesh   *qem.MeshData
	cfg    qem.Config
	result *qem.Result
}

func current(data interface{}) (s *session, err error) {
	s, ok := data.(*session)
	if !ok || s == nil || s.mesh == nil {
		err = errors.New("No mesh loaded, start the pipeline with load or load-json")
	}
	return
}

// settings returns the session to configure, creating an empty one so that
// configuration may precede loading.
func settings(data interface{}) *session {
	if s, ok := data.(*session); ok && s != nil {
		return s
	}
	return &session{cfg: qem.DefaultConfig()}
}

func load(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	if _, verbose := flags["verbose"]; verbose {
		fmt.Println("Loading OBJ mesh")
	}
	input_path := args[0]
	positions, indices, err := qem.ReadOBJFile(input_path)
	if err != nil {
		return
	}
	s := settings(data)
	s.mesh = &qem.MeshData{Name: input_path, Positions: positions, Indices: indices}
	result = interface{}(s)
	return
}

func load_json(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	if _, verbose := flags["verbose"]; verbose {
		fmt.Println("Loading JSON mesh")
	}
	md, err := qem.ReadFile(args[0])
	if err != nil {
		return
	}
	s := settings(data)
	s.mesh = md
	result = interface{}(s)
	return
}

func weld(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	distance, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return
	}
	if !(distance >= 0) {
		err = errors.New("Weld distance must not be negative")
		return
	}
	s, err := current(data)
	if err != nil {
		return
	}
	merged := s.mesh.Weld(distance)
	if _, verbose := flags["verbose"]; verbose {
		fmt.Printf("Welded %d vertices within %v of another\n", merged, distance)
	}
	result = interface{}(s)
	return
}

func config(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	if _, verbose := flags["verbose"]; verbose {
		fmt.Println("Reading config")
	}
	s := settings(data)
	s.cfg, err = qem.ReadConfigFile(args[0])
	if err != nil {
		return
	}
	result = interface{}(s)
	return
}

func ratio(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	fraction, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return
	}
	s := settings(data)
	s.cfg.ReductionFraction = fraction
	s.cfg.TargetTriangles = 0
	result = interface{}(s)
	return
}

func target(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	count, err := strconv.Atoi(args[0])
	if err != nil {
		return
	}
	s := settings(data)
	s.cfg.TargetTriangles = count
	result = interface{}(s)
	return
}

func aggressiveness(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	aggr, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return
	}
	s := settings(data)
	s.cfg.Aggressiveness = aggr
	result = interface{}(s)
	return
}

func free_border(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	s := settings(data)
	s.cfg.PreserveBorder = false
	result = interface{}(s)
	return
}

func simplify(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	_, verbose := flags["verbose"]
	if verbose {
		fmt.Println("Simplifying mesh")
	}
	s, err := current(data)
	if err != nil {
		return
	}
	cfg := s.cfg
	cfg.Verbose = cfg.Verbose || verbose
	res, err := s.mesh.Simplify(cfg)
	if errors.Is(err, qem.ErrNoProgress) {
		// the mesh now holds the compacted and renumbered but unreduced
		// input, later stages still apply
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintln(os.Stderr, yellow("Unable to reduce mesh"))
		err = nil
	}
	if err != nil {
		return
	}
	s.result = &res
	if verbose {
		fmt.Printf("%d triangles after %d iterations, max error %g\n",
			res.Triangles, res.Iterations, res.MaxError)
	}
	result = interface{}(s)
	return
}

func lossless(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	s := settings(data)
	s.cfg.Lossless = true
	if s.mesh == nil {
		result = interface{}(s)
		return
	}
	return simplify(data, flags, args)
}

func report(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	s, err := current(data)
	if err != nil {
		return
	}
	m, err := s.mesh.Ingest()
	if err != nil {
		return
	}
	fmt.Println(s.mesh.Name+":", m.Stats(s.cfg.SeamAngle))
	if s.result != nil {
		res := s.result
		fmt.Printf("last run: %d iterations, %d collapses, max error %g (%g relative), %d solve fallbacks\n",
			res.Iterations, res.Collapses, res.MaxError, res.RelativeError, res.Fallbacks)
	}
	result = data
	return
}

func save(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	if _, verbose := flags["verbose"]; verbose {
		fmt.Println("Saving mesh to OBJ file")
	}
	s, err := current(data)
	if err != nil {
		return
	}
	if err = qem.WriteOBJFile(args[0], s.mesh.Name, s.mesh.Positions, s.mesh.Indices); err != nil {
		return
	}
	result = data
	return
}

func save_json(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	if _, verbose := flags["verbose"]; verbose {
		fmt.Println("Saving mesh to JSON file")
	}
	s, err := current(data)
	if err != nil {
		return
	}
	err = s.mesh.WriteFile(args[0])
	if err != nil {
		return
	}
	result = data
	return
}

func main() {
	cli := piper.CLIApp{
		Name:        "qem",
		Description: "reduces triangle meshes by quadric edge collapse",
	}

	cli.RegisterFlag(piper.Flag{
		Name:        "verbose",
		Symbol:      "v",
		Description: "Verbose mode",
	})

	cli.RegisterCommand(piper.Command{
		Name:        "load",
		Description: "load mesh from obj file",
		Args:        []string{"obj file"},
		Task:        load,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "load-json",
		Description: "load mesh from json file",
		Args:        []string{"json file"},
		Task:        load_json,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "weld",
		Description: "merge vertices no further apart than distance, 0 for identical positions only",
		Args:        []string{"distance"},
		Task:        weld,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "config",
		Description: "read simplification settings from a json file",
		Args:        []string{"config file"},
		Task:        config,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "ratio",
		Description: "set the fraction of triangles to keep, values of 1 or more only run lossless passes",
		Args:        []string{"fraction"},
		Task:        ratio,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "target",
		Description: "set the number of triangles to reduce to",
		Args:        []string{"triangle count"},
		Task:        target,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "aggressiveness",
		Description: "set how quickly the collapse threshold grows",
		Args:        []string{"aggressiveness"},
		Task:        aggressiveness,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "free-border",
		Description: "allow border vertices to move, at a penalty",
		Task:        free_border,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "simplify",
		Description: "apply edge collapse simplification to the loaded mesh",
		Task:        simplify,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "lossless",
		Description: "only collapse edges of negligible cost, until none remain",
		Task:        lossless,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "report",
		Description: "print counts and bounds of the loaded mesh and the last run",
		Task:        report,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "save",
		Description: "save mesh to obj file",
		Args:        []string{"obj file"},
		Task:        save,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "save-json",
		Description: "save mesh to json file",
		Args:        []string{"json file"},
		Task:        save_json,
	})

	err := cli.Run()

	if err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Println(red(err))
		cli.PrintHelp()
	}
}
