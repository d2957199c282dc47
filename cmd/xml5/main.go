// Command xml5 parses an XML document from a file or stdin and prints its
// JSON projection.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arturoeanton/xml5/xml"
)

func getInputReader(args []string) (io.Reader, error) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		return os.Stdin, nil
	}

	return nil, fmt.Errorf("no input provided (pipe or file)")
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func main() {
	fs := flag.NewFlagSet("xml5", flag.ExitOnError)
	ignoreUndefined := fs.Bool("ignore-undefined-entities", false, "pass unknown &name; references through verbatim instead of erroring")
	preserveCdata := fs.Bool("preserve-cdata", false, "emit CDATA sections as a distinct node instead of folding them into text")
	suppressComments := fs.Bool("suppress-comments", false, "drop comments from the parsed tree")
	pretty := fs.Bool("pretty", false, "indent the JSON output")
	fs.Parse(os.Args[1:])

	r, err := getInputReader(fs.Args())
	if err != nil {
		die(err)
	}
	src, err := io.ReadAll(r)
	if err != nil {
		die(err)
	}

	var opts []xml.Option
	if *ignoreUndefined {
		opts = append(opts, xml.IgnoreUndefinedEntities())
	}
	if *preserveCdata {
		opts = append(opts, xml.PreserveCDATA())
	}
	if *suppressComments {
		opts = append(opts, xml.SuppressComments())
	}

	doc, err := xml.Parse(string(src), opts...)
	if err != nil {
		die(err)
	}

	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		die(err)
	}
	fmt.Println(string(out))
}
