// Command ifdinspect prints the subfile tree of a TIFF file: one node per
// subfile, one leaf per tag. Inline values are shown directly; out-of-line
// values print as "(not loaded)" unless -load is given.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/plimkilde/lazytiff"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the subfile tree of a TIFF file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	load := flag.Bool("load", false, "Load out-of-line field values before printing")
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	filename := flag.Arg(0)

	f, err := os.Open(filename)
	if err != nil {
		log.Fatalln(err)
	}
	defer f.Close()

	r, err := lazytiff.NewReader(f)
	if err != nil {
		log.Fatalln(err)
	}
	if err := r.ReadAllSubfiles(); err != nil {
		log.Fatalln(err)
	}

	fmt.Println(filepath.Base(filename))

	subfiles := r.Subfiles()
	for i, subfile := range subfiles {
		lastSubfile := i == len(subfiles)-1
		prefix := " ├─"
		if lastSubfile {
			prefix = " └─"
		}
		fmt.Printf("%s Subfile %d\n", prefix, i)

		if *load {
			if err := subfile.LoadAll(); err != nil {
				log.Println(err)
			}
		}

		tags := subfile.Tags()
		for j, tag := range tags {
			lastField := j == len(tags)-1
			var branch string
			switch {
			case lastSubfile && lastField:
				branch = "     └─"
			case lastSubfile:
				branch = "     ├─"
			case lastField:
				branch = " │   └─"
			default:
				branch = " │   ├─"
			}

			field := subfile.Field(tag)
			text := "(not loaded)"
			if raw, unknown := field.RawValue(); unknown {
				text = fmt.Sprintf("(unknown type %d) % x", field.TypeCode(), raw)
			} else if value := field.ValueIfLocal(); value != nil {
				text = formatValue(value)
			} else if *load {
				// LoadAll already reported failures; a field that still
				// has no value stays "(not loaded)".
				if value, err := field.Value(); err == nil && value != nil {
					text = formatValue(value)
				}
			}

			fmt.Printf("%s %s: %s\n", branch, lazytiff.TagName(tag), text)
		}
	}
}

func formatValue(value lazytiff.FieldValue) string {
	if v, ok := value.(lazytiff.ASCIIValue); ok {
		return fmt.Sprintf("%q", v.Text())
	}
	return fmt.Sprintf("%v", value)
}
