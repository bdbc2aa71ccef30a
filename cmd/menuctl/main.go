// Command menuctl encodes, decodes and renders QR menus from the terminal.
//
//	menuctl encode [-origin URL] [-json] [file]   menu JSON to share link
//	menuctl decode <payload|link>                 share link back to menu JSON
//	menuctl qr [-origin URL] [-o file] [file]     menu JSON to PNG QR code
//
// A missing file argument, or "-", reads the menu from stdin.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/forgo/qrmenu/api/internal/codec"
	"github.com/forgo/qrmenu/api/internal/model"
	"github.com/forgo/qrmenu/api/internal/publish"
)

const defaultOrigin = "http://localhost:8080"

// errUsage marks errors that should print usage
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr)
			usage(os.Stderr)
		}
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  menuctl encode [-origin URL] [-max N] [-json] [file]")
	fmt.Fprintln(w, "  menuctl decode <payload|link>")
	fmt.Fprintln(w, "  menuctl qr [-origin URL] [-max N] [-size PX] [-o file] [file]")
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	switch args[0] {
	case "encode":
		return runEncode(args[1:], stdin, stdout)
	case "decode":
		return runDecode(args[1:], stdout)
	case "qr":
		return runQR(args[1:], stdin, stdout)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func runEncode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	origin := fs.String("origin", defaultOrigin, "Public origin the link points at")
	maxLen := fs.Int("max", codec.DefaultMaxURLLength, "Maximum link length")
	outputJSON := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	m, err := readMenu(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	link, payload, err := codec.New(*origin, *maxLen).Link(m)
	if err != nil {
		return err
	}

	if *outputJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(model.Publication{URL: link, Payload: payload})
	}
	_, err = fmt.Fprintln(stdout, link)
	return err
}

func runDecode(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: decode takes exactly one payload or link", errUsage)
	}

	m, err := codec.Decode(payloadFrom(args[0]))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func runQR(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("qr", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	origin := fs.String("origin", defaultOrigin, "Public origin the link points at")
	maxLen := fs.Int("max", codec.DefaultMaxURLLength, "Maximum link length")
	size := fs.Int("size", publish.DefaultSize, "QR code edge length in pixels")
	out := fs.String("o", "", "Output file (default: named after the menu title)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	m, err := readMenu(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	link, _, err := codec.New(*origin, *maxLen).Link(m)
	if err != nil {
		return err
	}

	png, err := publish.QRCode(link, *size)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = publish.Filename(m.Title)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(stdout, "Wrote %s (%d bytes)\n", path, len(png))
	fmt.Fprintf(stdout, "Link: %s\n", link)
	return nil
}

// readMenu parses and validates a menu from path, or stdin for "" and "-"
func readMenu(path string, stdin io.Reader) (*model.Menu, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var m model.Menu
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("reading menu: %w", err)
	}

	if fieldErrs := m.Validate(); len(fieldErrs) > 0 {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fe.Field+": "+fe.Message)
		}
		return nil, fmt.Errorf("invalid menu: %s", strings.Join(msgs, "; "))
	}
	return &m, nil
}

// payloadFrom accepts either a bare payload or a full share link.
// The query is read raw so a legacy "+" in the payload survives.
func payloadFrom(arg string) string {
	if !strings.Contains(arg, "?") {
		return arg
	}
	u, err := url.Parse(arg)
	if err != nil {
		return arg
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if v, ok := strings.CutPrefix(pair, "data="); ok {
			if unescaped, err := url.PathUnescape(v); err == nil {
				return unescaped
			}
			return v
		}
	}
	return ""
}
