package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bodgit/lvimg"
	"github.com/bodgit/lvimg/cache"
	lvimage "github.com/bodgit/lvimg/image"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const defaultDB = "lvimg.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func parseSize(s string) (image.Point, error) {
	if s == "" {
		return image.Point{}, nil
	}

	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", s)
	}

	var p [2]int
	for i, part := range parts {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return image.Point{}, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", s)
		}
		p[i] = n
	}

	return image.Pt(p[0], p[1]), nil
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func convert(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	size, err := parseSize(c.String("size"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	catalog, err := lvimg.NewCatalog(c.String("db"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer catalog.Close()

	converter := lvimg.New(catalog, newLogger(c), &lvimg.Options{
		Size:    size,
		Colors:  c.Int("colors"),
		Workers: c.Int("workers"),
		Force:   c.Bool("force"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := converter.Convert(ctx, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}

	if report.Empty() {
		fmt.Printf("No source images found in %s\n", c.Args().Get(0))
		return nil
	}

	fmt.Printf("%d converted, %d unchanged, %d failed\n", len(report.Converted), len(report.Skipped), len(report.Failed))
	for _, f := range report.Failed {
		fmt.Printf("  %s: %v\n", f.File, f.Err)
	}

	if len(report.Failed) > 0 {
		return cli.Exit("", 1)
	}

	return nil
}

func inspect(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	failed := 0
	for _, file := range c.Args().Slice() {
		b, err := ioutil.ReadFile(file)
		if err != nil {
			fmt.Printf("%s: %v\n", file, err)
			failed++
			continue
		}

		d, err := lvimage.Parse(b)
		if err != nil {
			fmt.Printf("%s: %v\n", file, err)
			failed++
			continue
		}

		fmt.Printf("%s: %dx%d, stride %d, format %#02x, %d payload bytes, %s\n", file, d.Width, d.Height, d.Stride, d.Format, d.Len(), lvimg.Classify(lvimg.Code(file)))
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}

func preview(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	icons := cache.New(os.DirFS(c.String("root")), newLogger(c))

	d, err := icons.Load(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}

	f, err := os.Create(c.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer f.Close()

	if err := png.Encode(f, d); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func list(c *cli.Context) error {
	if _, err := os.Stat(c.String("db")); errors.Is(err, os.ErrNotExist) {
		return cli.Exit(fmt.Sprintf("no catalog at %s", c.String("db")), 1)
	}

	catalog, err := lvimg.NewCatalog(c.String("db"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer catalog.Close()

	entries, err := catalog.Entries()
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tCLASS\tSOURCE\tSIZE\tBYTES\tCONVERTED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%s\n", e.Code, e.Class, e.Source, e.Width, e.Height, e.Size, e.Converted.Format("2006-01-02 15:04:05"))
	}

	return w.Flush()
}

func main() {
	app := cli.NewApp()

	app.Name = "lvimg"
	app.Usage = "LVGL binary icon conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"LVIMG_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert source images to LVGL binary images",
			Description: "Every " + strings.Join(lvimg.Extensions, ", ") + " file in INPUT is written to OUTPUT as CODE" + cache.Ext,
			ArgsUsage:   "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "size",
					Usage: "resize icons to `WIDTHxHEIGHT` first",
				},
				&cli.IntFlag{
					Name:  "colors",
					Usage: "reduce icons to at most `N` colors first",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of icons to convert in parallel",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "convert icons even if unchanged",
				},
			},
			Action: convert,
		},
		{
			Name:      "inspect",
			Usage:     "Validate LVGL binary images and print their headers",
			ArgsUsage: "FILE...",
			Action:    inspect,
		},
		{
			Name:      "preview",
			Usage:     "Load an icon by code and write it as a PNG",
			ArgsUsage: "CODE FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "root",
					Value: ".",
					Usage: "directory containing the " + cache.Dir + " directory",
				},
			},
			Action: preview,
		},
		{
			Name:   "list",
			Usage:  "List converted icons",
			Action: list,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
