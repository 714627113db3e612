// go run github.com/nat-n/qem/sstool -i ./meshes/raw -o ./meshes/decimated -r 0.25 -json

/*
 * Batch decimation: every .obj file in the input directory is simplified with
 * the same settings and written under the same name to the output directory.
 * Meshes are independent sessions, so they are processed concurrently.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/nat-n/qem"
)

type decimated struct {
	name string
	res  qem.Result
	err  error
}

func load_meshes(meshes_path string) (meshes []*qem.MeshData) {
	files, err := ioutil.ReadDir(meshes_path)
	if err != nil {
		panic(err)
	}
	r, _ := regexp.Compile(`^(.+)\.obj$`)
	for _, f := range files {
		if !r.MatchString(f.Name()) {
			continue
		}
		positions, indices, err := qem.ReadOBJFile(filepath.Join(meshes_path, f.Name()))
		if err != nil {
			panic(err)
		}
		meshes = append(meshes, &qem.MeshData{
			Name:      string(r.FindSubmatch([]byte(f.Name()))[1]),
			Positions: positions,
			Indices:   indices,
		})
	}
	return
}

func save_meshes(meshes_path string, meshes []*qem.MeshData, as_json bool) {
	// ensure meshes_path is a directory
	path_stat, err := os.Stat(meshes_path)
	if os.IsNotExist(err) || !path_stat.Mode().IsDir() {
		panic(errors.New("Provided path for saving meshes is not a directory"))
	}

	for _, md := range meshes {
		if as_json {
			if err = md.WriteFile(filepath.Join(meshes_path, md.Name+".json")); err != nil {
				panic(err)
			}
			continue
		}
		obj_path := filepath.Join(meshes_path, md.Name+".obj")
		if err = qem.WriteOBJFile(obj_path, md.Name, md.Positions, md.Indices); err != nil {
			panic(err)
		}
	}
}

// decimate_meshes simplifies every mesh in place, one goroutine per mesh.
func decimate_meshes(meshes []*qem.MeshData, cfg qem.Config) (results []decimated) {
	var wg sync.WaitGroup

	new_results := make(chan decimated, 16)
	for _, md := range meshes {
		wg.Add(1)
		go func(md *qem.MeshData) {
			res, err := md.Simplify(cfg)
			new_results <- decimated{md.Name, res, err}
		}(md)
	}

	// Recieve new_results until they're all done
	go func() {
		wg.Wait()
		close(new_results)
	}()
	for d := range new_results {
		results = append(results, d)
		wg.Done()
	}
	return
}

func main() {
	input_meshes := flag.String("i", "", "directory to load obj meshes from")
	output_meshes := flag.String("o", "", "directory to save meshes to")
	config_path := flag.String("c", "", "json config file")

	fraction := flag.Float64("r", 0, "fraction of triangles to keep")
	target := flag.Int("t", 0, "number of triangles to reduce each mesh to")
	lossless := flag.Bool("lossless", false, "only collapse edges of negligible cost")
	free_border := flag.Bool("free_border", false, "allow border vertices to move")
	weld := flag.Float64("weld", -1, "merge vertices within this distance before decimating, 0 for identical positions only")
	as_json := flag.Bool("json", false, "save meshes as json instead of obj")
	verbose := flag.Bool("v", false, "verbose")

	flag.Parse()

	if len(*input_meshes) == 0 {
		fmt.Println("Error: No input meshes provided")
		flag.PrintDefaults()
		return
	}

	cfg := qem.DefaultConfig()
	var err error
	if len(*config_path) > 0 {
		cfg, err = qem.ReadConfigFile(*config_path)
		if err != nil {
			panic(err)
		}
	}
	if *fraction > 0 {
		cfg.ReductionFraction = *fraction
	}
	if *target > 0 {
		cfg.TargetTriangles = *target
	}
	cfg.Lossless = cfg.Lossless || *lossless
	cfg.PreserveBorder = cfg.PreserveBorder && !*free_border
	if err = cfg.Validate(); err != nil {
		fmt.Println(err)
		flag.PrintDefaults()
		return
	}

	meshes := load_meshes(*input_meshes)
	if *weld >= 0 {
		for _, md := range meshes {
			if merged := md.Weld(*weld); *verbose {
				fmt.Printf("%s: welded %d vertices\n", md.Name, merged)
			}
		}
	}
	results := decimate_meshes(meshes, cfg)

	red := color.New(color.FgRed).SprintFunc()
	failed := make([]string, 0)
	for _, d := range results {
		switch {
		case errors.Is(d.err, qem.ErrNoProgress):
			fmt.Println(d.name+":", "unable to reduce mesh")
		case d.err != nil:
			fmt.Println(red(d.name+": "+d.err.Error()))
			failed = append(failed, d.name)
		case *verbose:
			fmt.Printf("%s: %d triangles, max error %g\n", d.name, d.res.Triangles, d.res.MaxError)
		}
	}
	if len(failed) > 0 {
		fmt.Println(red("failed: " + strings.Join(failed, ", ")))
	}

	if len(*output_meshes) > 0 {
		save_meshes(*output_meshes, meshes, *as_json)
	}
}
