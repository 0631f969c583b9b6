/*
   Copyright 2025 The DIRPX Authors.

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

// jsv converts between JSON and JSV.
//
// Usage:
//
//	jsv [-from json|jsv] [-to json|jsv] [-pretty] [-dump] [-config file] [file]
//
// Input is read from file, or stdin when no file (or "-") is given. JSV
// input is parsed into a generic value graph (maps, lists, numbers,
// booleans, strings) before being written back out, so jsv -from jsv -to
// jsv normalizes key order. -dump prints that graph to stderr.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"

	"dirpx.dev/jsv"
	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/builder"
	"dirpx.dev/jsv/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fatal("%v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "jsv: "+format+"\n", args...)
	os.Exit(1)
}

var anyType = reflect.TypeFor[any]()

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("jsv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.String("from", "json", "input format: json or jsv")
	to := fs.String("to", "jsv", "output format: json or jsv")
	pretty := fs.Bool("pretty", false, "indent the output")
	dump := fs.Bool("dump", false, "dump the decoded value graph to stderr")
	cfgPath := fs.String("config", "", "YAML file with codec options")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := stdin
	if name := fs.Arg(0); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	reg := builder.New().BuildRegistry(cfg, nil, nil)

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var value any
	switch strings.ToLower(*from) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&value); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse json: %w", err)
		}
	case "jsv":
		if value, err = reg.Parse(string(data), anyType); err != nil {
			return fmt.Errorf("parse jsv: %w", err)
		}
	default:
		return fmt.Errorf("unknown input format %q", *from)
	}

	if *dump {
		spew.Fdump(stderr, value)
	}

	var out []byte
	switch strings.ToLower(*to) {
	case "json":
		if *pretty {
			out, err = json.MarshalIndent(value, "", "  ")
		} else {
			out, err = json.Marshal(value)
		}
		if err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	case "jsv":
		text, err := reg.Serialize(value)
		if err != nil {
			return fmt.Errorf("write jsv: %w", err)
		}
		if *pretty {
			if text, err = jsv.Format(text); err != nil {
				return err
			}
		}
		out = []byte(text)
	default:
		return fmt.Errorf("unknown output format %q", *to)
	}

	out = append(out, '\n')
	_, err = stdout.Write(out)
	return err
}

// loadConfig reads the optional config file. Generic values are always
// converted, whatever the file says, since the output side needs a graph.
func loadConfig(path string) (apis.Config, error) {
	if path == "" {
		return config.NewConfig(config.WithConvertObjectTypes(true)), nil
	}
	return config.LoadFile(path, config.WithConvertObjectTypes(true))
}
