// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package main

import (
	"fmt"
	"log"
	"os"

	"git.fractalqb.de/fractalqb/hyxic"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

var (
	flagData  string
	flagName  string
	flagStart string
	flagEnd   string
)

var rootCmd = &cobra.Command{
	Use:   "hyxic",
	Short: "compile and render context-aware hypertext templates",
}

var renderCmd = &cobra.Command{
	Use:   "render <template-file>",
	Short: "render a template with values from a YAML file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, err := compileFile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		bt := prog.NewBinding(nil)
		if flagData != "" {
			data, err := loadData(flagData)
			if err != nil {
				log.Fatal(err)
			}
			for k, v := range data {
				bt.BindIfName(k, v)
			}
			missed, err := bt.Fill(data, false)
			if err != nil {
				log.Fatal(err)
			}
			if missed > 0 {
				log.Printf("%d hole(s) without data", missed)
			}
		}
		if _, err := bt.Render(os.Stdout); err != nil {
			log.Fatal(err)
		}
	},
}

var holesCmd = &cobra.Command{
	Use:   "holes <template-file>",
	Short: "list the named holes of a template and their contexts",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, err := compileFile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		for _, nm := range prog.Holes() {
			for _, idx := range prog.HoleIdxs(nm) {
				ctx, _ := prog.HoleContext(idx)
				fmt.Printf("%s\t%s\n", nm, ctx)
			}
		}
	},
}

func compileFile(path string) (*hyxic.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := flagName
	if name == "" {
		name = path
	}
	p := hyxic.Parser{StartInlinePh: flagStart, EndInlinePh: flagEnd}
	return p.Compile(name, string(src))
}

func loadData(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	res, ok := yamlVal(doc).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("data file '%s' is not a mapping", path)
	}
	return res, nil
}

// yamlVal rewrites yaml.v2's interface-keyed maps into string-keyed
// ones so the values work as hole and path data.
func yamlVal(v interface{}) interface{} {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		res := make(map[string]interface{}, len(x))
		for k, kv := range x {
			res[fmt.Sprint(k)] = yamlVal(kv)
		}
		return res
	case []interface{}:
		for i := range x {
			x[i] = yamlVal(x[i])
		}
	}
	return v
}

func main() {
	log.SetOutput(os.Stderr)
	rootCmd.PersistentFlags().StringVar(&flagStart, "start", "${",
		"start delimiter of inline placeholders")
	rootCmd.PersistentFlags().StringVar(&flagEnd, "end", "}",
		"end delimiter of inline placeholders")
	rootCmd.PersistentFlags().StringVar(&flagName, "name", "",
		"template name, defaults to the file path")
	renderCmd.Flags().StringVar(&flagData, "data", "",
		"YAML file with hole values")
	rootCmd.AddCommand(renderCmd, holesCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
