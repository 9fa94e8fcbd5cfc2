package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"

	"github.com/viant/containerfs/config"
	"github.com/viant/containerfs/driver"
)

func main() {
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "create":
		createCmd(os.Args[2:])
	case "cat":
		catCmd(os.Args[2:])
	case "cp":
		cpCmd(os.Args[2:])
	case "get":
		getCmd(os.Args[2:])
	case "put":
		putCmd(os.Args[2:])
	case "rm":
		rmCmd(os.Args[2:])
	case "ls":
		lsCmd(os.Args[2:])
	case "stat":
		statCmd(os.Args[2:])
	case "defrag":
		defragCmd(os.Args[2:])
	case "format":
		formatCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: containerfs <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  create  Create a file (empty, or from --content)")
	fmt.Fprintln(os.Stderr, "  cat     Print a file's content to stdout")
	fmt.Fprintln(os.Stderr, "  cp      Copy an ambient-OS file in")
	fmt.Fprintln(os.Stderr, "  get     Download a file over HTTP")
	fmt.Fprintln(os.Stderr, "  put     Overwrite (or create) a file from --content")
	fmt.Fprintln(os.Stderr, "  rm      Delete a file")
	fmt.Fprintln(os.Stderr, "  ls      List live files")
	fmt.Fprintln(os.Stderr, "  stat    Report existence and available space")
	fmt.Fprintln(os.Stderr, "  defrag  Reclaim tombstoned space")
	fmt.Fprintln(os.Stderr, "  format  Reset the container to empty")
}

// commonFlags holds the flags shared by every subcommand.
type commonFlags struct {
	configPath *string
}

func bindCommon(flags *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: flags.String("config", "", "containerfs config yaml (required)"),
	}
}

func openDriver(cf commonFlags) (*driver.Driver, *config.Config) {
	if *cf.configPath == "" {
		log.Fatalf("containerfs: -config is required")
	}
	cfg, err := config.Load(*cf.configPath)
	if err != nil {
		log.Fatalf("containerfs: %v", err)
	}
	var opts []driver.Option
	if cfg.Cache {
		opts = append(opts, driver.WithCache(cfg.CacheSnapshotPath))
	}
	if cfg.ResolvedDownloadToken() != "" {
		opts = append(opts, driver.WithDownloadSecret(cfg.ResolvedDownloadToken()))
	}
	d, err := driver.Open(cfg.Path, cfg.Capacity, opts...)
	if err != nil {
		log.Fatalf("containerfs: open %s: %v", cfg.Path, err)
	}
	return d, cfg
}

func createCmd(args []string) {
	flags := flag.NewFlagSet("create", flag.ExitOnError)
	cf := bindCommon(flags)
	name := flags.String("name", "", "file name (required)")
	content := flags.String("content", "", "file content (optional)")
	flags.Parse(args)
	if *name == "" {
		flags.Usage()
		os.Exit(2)
	}

	d, _ := openDriver(cf)
	defer d.Close()
	if err := d.CreateFileWithContent(*name, []byte(*content)); err != nil {
		log.Fatalf("create: %v", err)
	}
}

func catCmd(args []string) {
	flags := flag.NewFlagSet("cat", flag.ExitOnError)
	cf := bindCommon(flags)
	name := flags.String("name", "", "file name (required)")
	flags.Parse(args)
	if *name == "" {
		flags.Usage()
		os.Exit(2)
	}

	d, _ := openDriver(cf)
	defer d.Close()
	content, err := d.ReadFile(*name)
	if err != nil {
		log.Fatalf("cat: %v", err)
	}
	os.Stdout.Write(content)
}

func cpCmd(args []string) {
	flags := flag.NewFlagSet("cp", flag.ExitOnError)
	cf := bindCommon(flags)
	path := flags.String("path", "", "ambient-OS file path (required)")
	flags.Parse(args)
	if *path == "" {
		flags.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, _ := openDriver(cf)
	defer d.Close()
	if err := d.CopyFromPath(ctx, *path); err != nil {
		log.Fatalf("cp: %v", err)
	}
}

func getCmd(args []string) {
	flags := flag.NewFlagSet("get", flag.ExitOnError)
	cf := bindCommon(flags)
	uri := flags.String("uri", "", "URI to download (required)")
	flags.Parse(args)
	if *uri == "" {
		flags.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, _ := openDriver(cf)
	defer d.Close()
	if err := d.DownloadAndSave(ctx, *uri); err != nil {
		log.Fatalf("get: %v", err)
	}
}

func putCmd(args []string) {
	flags := flag.NewFlagSet("put", flag.ExitOnError)
	cf := bindCommon(flags)
	name := flags.String("name", "", "file name (required)")
	content := flags.String("content", "", "new content")
	flags.Parse(args)
	if *name == "" {
		flags.Usage()
		os.Exit(2)
	}

	d, _ := openDriver(cf)
	defer d.Close()
	if err := d.OverwriteFile(*name, []byte(*content)); err != nil {
		log.Fatalf("put: %v", err)
	}
}

func rmCmd(args []string) {
	flags := flag.NewFlagSet("rm", flag.ExitOnError)
	cf := bindCommon(flags)
	name := flags.String("name", "", "file name (required)")
	flags.Parse(args)
	if *name == "" {
		flags.Usage()
		os.Exit(2)
	}

	d, _ := openDriver(cf)
	defer d.Close()
	if err := d.DeleteFile(*name); err != nil {
		log.Fatalf("rm: %v", err)
	}
}

func lsCmd(args []string) {
	flags := flag.NewFlagSet("ls", flag.ExitOnError)
	cf := bindCommon(flags)
	flags.Parse(args)

	d, _ := openDriver(cf)
	defer d.Close()
	names, err := d.ListFiles()
	if err != nil {
		log.Fatalf("ls: %v", err)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func statCmd(args []string) {
	flags := flag.NewFlagSet("stat", flag.ExitOnError)
	cf := bindCommon(flags)
	name := flags.String("name", "", "file name (optional; omit to report available space only)")
	flags.Parse(args)

	d, _ := openDriver(cf)
	defer d.Close()

	if *name != "" {
		ok, err := d.FileExists(*name)
		if err != nil {
			log.Fatalf("stat: %v", err)
		}
		fmt.Printf("exists=%t\n", ok)
	}
	avail, err := d.AvailableSpace()
	if err != nil {
		log.Fatalf("stat: %v", err)
	}
	fmt.Printf("availableSpace=%d\n", avail)
}

func defragCmd(args []string) {
	flags := flag.NewFlagSet("defrag", flag.ExitOnError)
	cf := bindCommon(flags)
	flags.Parse(args)

	d, _ := openDriver(cf)
	defer d.Close()
	if err := d.Defragment(); err != nil {
		log.Fatalf("defrag: %v", err)
	}
}

func formatCmd(args []string) {
	flags := flag.NewFlagSet("format", flag.ExitOnError)
	cf := bindCommon(flags)
	force := flags.Bool("force", false, "required to confirm a destructive format")
	flags.Parse(args)
	if !*force {
		fmt.Fprintln(os.Stderr, "containerfs: format is destructive; pass -force to confirm")
		os.Exit(2)
	}

	d, _ := openDriver(cf)
	defer d.Close()
	if err := d.Format(); err != nil {
		log.Fatalf("format: %v", err)
	}
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
