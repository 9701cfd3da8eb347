// Command jsonmend repairs malformed JSON files or stdin into strictly
// valid JSON.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jsonmend/jsonmend"
	"github.com/jsonmend/jsonmend/internal/config"
)

var (
	write = flag.Bool("w", false,
		"write result to (source) file instead of stdout",
	)
	list = flag.Bool("l", false,
		"list files whose content changed during repair",
	)
	verbose          = flag.Bool("v", false, "log every repair decision to stderr")
	unescapedUnicode = flag.Bool("u", false, "leave non-ASCII characters literal in the output")
	omitEmpty        = flag.Bool("omit-empty", false, "delete keys whose value is missing")
	omitIncomplete   = flag.Bool("omit-incomplete", false, "delete keys whose value string was cut off")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: jsonmend [flags] [path ...]\n")
	flag.PrintDefaults()
}

func main() {
	if err := mainE(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func mainE() error {
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := []jsonmend.Option{
		jsonmend.WithUnescapedUnicode(cfg.UnescapedUnicode || *unescapedUnicode),
		jsonmend.WithOmitEmptyValues(cfg.OmitEmptyValues || *omitEmpty),
		jsonmend.WithOmitIncompleteStrings(cfg.OmitIncompleteStrings || *omitIncomplete),
	}
	if *verbose || cfg.LogLevel == "debug" {
		opts = append(opts, jsonmend.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}
	repairer := jsonmend.New(opts...)

	args := flag.Args()
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		if *write {
			return fmt.Errorf("cannot use -w with standard input")
		}
		return processReader(repairer, os.Stdin, os.Stdout)
	}

	for _, path := range args {
		if err := processFile(repairer, path); err != nil {
			return err
		}
	}
	return nil
}

func processReader(repairer *jsonmend.Repairer, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	repaired, err := repairer.Repair(string(data))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, repaired)
	return err
}

func processFile(repairer *jsonmend.Repairer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	repaired, err := repairer.Repair(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	changed := repaired != string(data)
	if *list && changed {
		fmt.Println(path)
	}
	if *write {
		if !changed {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte(repaired), info.Mode().Perm())
	}
	if !*list {
		fmt.Println(repaired)
	}
	return nil
}
