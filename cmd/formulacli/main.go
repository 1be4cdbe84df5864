// Command formulacli is a small batch driver over github.com/vogtb/formulacore:
// it applies a script of cell, worksheet, and named-range directives to a
// single in-memory workbook, recalculates it, and prints the requested
// cells. It exists to exercise the library end to end from the outside
// rather than to be a full spreadsheet application.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/vogtb/formulacore"
)

func main() {
	app := &cli.App{
		Name:    "formulacli",
		Usage:   "apply spreadsheet directives to an in-memory workbook and print results",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug-level logging",
			},
			&cli.BoolFlag{
				Name:  "parallel",
				Usage: "recalculate using the level-by-level parallel scheduler instead of the single-threaded walk",
			},
		},
		Before: func(c *cli.Context) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			evalCommand,
			setCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "formulacli:", err)
		os.Exit(1)
	}
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "apply every directive in a script file, recalculate once, and print the cells the script touched",
	ArgsUsage: "<script-file>",
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return cli.Exit("run requires a script file path", 1)
		}
		file, err := os.Open(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("opening %q: %v", path, err), 1)
		}
		defer file.Close()

		sheet := formula.NewSpreadsheet()
		var touched []string
		var printed []string

		scanner := bufio.NewScanner(file)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			address, err := applyDirective(sheet, line)
			if err != nil {
				return cli.Exit(fmt.Sprintf("%s:%d: %v", path, lineNo, err), 1)
			}
			switch {
			case address != "" && strings.HasPrefix(line, "get "):
				printed = append(printed, address)
			case address != "":
				touched = append(touched, address)
			}
		}
		if err := scanner.Err(); err != nil {
			return cli.Exit(fmt.Sprintf("reading %q: %v", path, err), 1)
		}

		if err := recalculate(c, sheet); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		if len(printed) == 0 {
			printed = touched
		}
		for _, address := range printed {
			printCell(sheet, address)
		}
		return nil
	},
}

var evalCommand = &cli.Command{
	Name:      "eval",
	Usage:     "evaluate a single formula expression against an empty workbook",
	ArgsUsage: "<formula>",
	Action: func(c *cli.Context) error {
		expr := strings.Join(c.Args().Slice(), " ")
		if expr == "" {
			return cli.Exit("eval requires a formula expression", 1)
		}
		if !strings.HasPrefix(expr, "=") {
			expr = "=" + expr
		}

		sheet := formula.NewSpreadsheet()
		if err := sheet.AddWorksheet("Sheet1"); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		const scratch = "Sheet1!A1"
		if err := sheet.Set(scratch, expr); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		if err := recalculate(c, sheet); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		printCell(sheet, scratch)
		return nil
	},
}

var setCommand = &cli.Command{
	Name:      "set",
	Usage:     "apply one or more address=value directives and print the resulting cells",
	ArgsUsage: "<address=value>...",
	Action: func(c *cli.Context) error {
		if c.Args().Len() == 0 {
			return cli.Exit("set requires at least one address=value directive", 1)
		}

		sheet := formula.NewSpreadsheet()
		var touched []string
		for _, directive := range c.Args().Slice() {
			address, err := applyDirective(sheet, directive)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if address != "" {
				touched = append(touched, address)
			}
		}

		if err := recalculate(c, sheet); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		for _, address := range touched {
			printCell(sheet, address)
		}
		return nil
	},
}

// recalculate runs the single-threaded or parallel scheduler depending on
// the --parallel flag, logging which one it picked at debug level.
func recalculate(c *cli.Context, sheet *formula.Spreadsheet) error {
	distinct, totalRefs := sheet.StringInternStats()
	log.Debug().Int("distinct_strings", distinct).Int("string_references", totalRefs).Msg("string table")

	if c.Bool("parallel") {
		log.Debug().Msg("recalculating with CalculateParallel")
		return sheet.CalculateParallel(context.Background())
	}
	log.Debug().Msg("recalculating with Calculate")
	return sheet.Calculate()
}

// applyDirective parses one script/argument line and applies it to sheet.
// It returns the cell address touched, if any, so callers can decide what
// to print after recalculation.
//
// Recognized forms:
//
//	worksheet <name>        add a worksheet
//	namedrange <name>       intern a named range
//	get <address>           mark address for printing (run command only)
//	<address>=<value>       set a cell; a value starting with "=" is a formula
func applyDirective(sheet *formula.Spreadsheet, line string) (string, error) {
	switch {
	case strings.HasPrefix(line, "worksheet "):
		name := strings.TrimSpace(strings.TrimPrefix(line, "worksheet "))
		return "", sheet.AddWorksheet(name)

	case strings.HasPrefix(line, "namedrange "):
		name := strings.TrimSpace(strings.TrimPrefix(line, "namedrange "))
		return "", sheet.AddNamedRange(name)

	case strings.HasPrefix(line, "get "):
		return strings.TrimSpace(strings.TrimPrefix(line, "get ")), nil

	default:
		address, rawValue, ok := strings.Cut(line, "=")
		if !ok {
			return "", fmt.Errorf("unrecognized directive: %q", line)
		}
		address = strings.TrimSpace(address)
		rawValue = strings.TrimSpace(rawValue)
		if address == "" {
			return "", fmt.Errorf("missing cell address in directive: %q", line)
		}
		return address, sheet.Set(address, parseValue(rawValue))
	}
}

// parseValue turns the right-hand side of a set directive into the
// Primitive Set expects. A leading "=" marks a formula and is passed
// through verbatim; otherwise the text is coerced to a number or boolean
// where it unambiguously parses as one, and kept as a string otherwise.
func parseValue(raw string) formula.Primitive {
	if strings.HasPrefix(raw, "=") {
		return raw
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return strings.Trim(raw, `"`)
}

// printCell renders a single cell's current value to stdout in
// "address\tvalue" form, matching the plain-text shape of the script
// inputs it's printing the results of.
func printCell(sheet *formula.Spreadsheet, address string) {
	value, err := sheet.Get(address)
	if err != nil {
		fmt.Printf("%s\t#ERROR: %v\n", address, err)
		return
	}
	fmt.Printf("%s\t%s\n", address, formatPrimitive(value))
}

func formatPrimitive(value formula.Primitive) string {
	switch v := value.(type) {
	case nil:
		return ""
	case *formula.SpreadsheetError:
		return v.Error()
	case *formula.ArrayValue:
		rows := make([]string, v.Rows)
		for r := 0; r < v.Rows; r++ {
			cols := make([]string, v.Cols)
			for col := 0; col < v.Cols; col++ {
				cols[col] = formatPrimitive(v.At(r, col))
			}
			rows[r] = strings.Join(cols, ",")
		}
		return strings.Join(rows, ";")
	case formula.BlankValue:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
