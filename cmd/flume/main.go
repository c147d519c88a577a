package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"

	"github.com/t7a/flume"
	"github.com/t7a/flume/chunkstore"
	"github.com/t7a/flume/fs"
	"github.com/t7a/flume/gate"
	"github.com/t7a/flume/meta"
)

func init() {
	if os.Getenv("DEBUG") == "1" {
		log.SetLevel(log.DebugLevel)
	}
	logrus.SetReportCaller(true)
	formatter := &logrus.TextFormatter{
		CallerPrettyfier: caller(),
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyFile: "caller",
		},
	}
	formatter.TimestampFormat = "15:04:05.999999999"
	logrus.SetFormatter(formatter)
}

// caller returns string presentation of log caller which is formatted
// as `/path/to/file.go:line_number`. e.g. `/internal/app/api.go:25`
func caller() func(*runtime.Frame) (function string, file string) {
	return func(f *runtime.Frame) (function string, file string) {
		p, _ := os.Getwd()
		return "", fmt.Sprintf("%s:%d", strings.TrimPrefix(f.File, p), f.Line)
	}
}

type Opts struct {
	Init      bool
	Put       bool
	Get       bool
	Ls        bool
	Mkdir     bool
	Mv        bool
	Cp        bool
	Rm        bool
	Revisions bool
	Chunked   bool   `docopt:"--chunked"`
	Region    string `docopt:"--region"`
	Rev       int    `docopt:"--rev"`
	Path      string `docopt:"<path>"`
	Src       string `docopt:"<src>"`
	Dst       string `docopt:"<dst>"`
}

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {

	usage := `flume storage gateway

Usage:
  flume init [--chunked] [--region=<region>]
  flume put <path>
  flume get <path> [--rev=<n>]
  flume ls <path>
  flume mkdir <path>
  flume mv <src> <dst>
  flume cp <src> <dst>
  flume rm <path>
  flume revisions <path>

Options:
  -h --help          Show this screen.
  --chunked          Store objects as content-defined chunks.
  --region=<region>  Logical storage region name [default: local].
  --rev=<n>          Revision number to fetch, 0 for newest [default: 0].
`
	parser := &docopt.Parser{OptionsFirst: false}
	o, _ := parser.ParseArgs(usage, os.Args[1:], "0.1")
	var opts Opts
	err := o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return 22
	}
	log.Debug(opts)

	switch true {
	case opts.Init:
		msg, err := create(opts.Chunked, opts.Region)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(msg)
	case opts.Put:
		entry, created, err := put(opts.Path, os.Stdin)
		if err != nil {
			log.Error(err)
			return 42
		}
		verb := "updated"
		if created {
			verb = "created"
		}
		fmt.Printf("%s %s v%d %s\n", verb, opts.Path, entry.Version, entry.Digests["sha256"])
	case opts.Get:
		err := get(opts.Path, opts.Rev, os.Stdout)
		if err != nil {
			log.Error(err)
			return 42
		}
	case opts.Ls:
		lines, err := ls(opts.Path)
		if err != nil {
			log.Error(err)
			return 42
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	case opts.Mkdir:
		err := mkdir(opts.Path)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Printf("created %s\n", opts.Path)
	case opts.Mv:
		_, _, err := relocate("move", opts.Src, opts.Dst)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Printf("moved %s -> %s\n", opts.Src, opts.Dst)
	case opts.Cp:
		_, _, err := relocate("copy", opts.Src, opts.Dst)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Printf("copied %s -> %s\n", opts.Src, opts.Dst)
	case opts.Rm:
		err := rm(opts.Path)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Printf("removed %s\n", opts.Path)
	case opts.Revisions:
		lines, err := revisions(opts.Path)
		if err != nil {
			log.Error(err)
			return 42
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	}
	return 0
}

// config ties the gateway directory together: which backend kind
// lives under store/, and the region it stands in for.
type config struct {
	Backend string
	Region  string
}

func gatedir() (dir string) {
	dir = os.Getenv("FLUMEDIR")
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			panic("can't get current directory")
		}
	}
	return
}

func create(chunked bool, region string) (msg string, err error) {
	dir := gatedir()

	kind := "fs"
	storedir := filepath.Join(dir, "store")
	if chunked {
		kind = "chunk"
		_, err = chunkstore.Store{Dir: storedir, RegionName: region}.Create()
	} else {
		_, err = fs.Store{Dir: storedir, RegionName: region}.Create()
	}
	if err != nil {
		return
	}

	svc, err := meta.Create(filepath.Join(dir, "meta.db"))
	if err != nil {
		return
	}
	defer svc.Close()

	buf, err := json.Marshal(config{Backend: kind, Region: region})
	if err != nil {
		return
	}
	err = ioutil.WriteFile(filepath.Join(dir, "config.json"), buf, 0644)
	if err != nil {
		return
	}
	return fmt.Sprintf("Initialized empty gateway in %s", dir), nil
}

func opengw() (gw *gate.Gateway, svc *meta.Service, err error) {
	dir := gatedir()

	buf, err := ioutil.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return
	}
	var conf config
	err = json.Unmarshal(buf, &conf)
	if err != nil {
		return
	}

	var backend gate.Backend
	storedir := filepath.Join(dir, "store")
	switch conf.Backend {
	case "chunk":
		backend, err = chunkstore.Open(storedir)
	default:
		backend, err = fs.Open(storedir)
	}
	if err != nil {
		return
	}

	svc, err = meta.Open(filepath.Join(dir, "meta.db"))
	if err != nil {
		return
	}

	gw = gate.Gateway{}.New(backend, svc, svc.RootID())
	return
}

func put(path string, rd io.Reader) (entry *gate.Entry, created bool, err error) {
	gw, svc, err := opengw()
	if err != nil {
		return
	}
	defer svc.Close()

	logical, err := gw.ValidatePath(path)
	if err != nil {
		return
	}
	stream := flume.NewReaderStream(rd, flume.SizeUnknown)
	return gw.Upload(stream, logical)
}

func get(path string, rev int, out io.Writer) (err error) {
	gw, svc, err := opengw()
	if err != nil {
		return
	}
	defer svc.Close()

	logical, err := gw.ValidatePath(path)
	if err != nil {
		return
	}
	stream, err := gw.Download(logical, rev)
	if err != nil {
		return
	}
	defer flume.Close(stream)
	_, err = io.Copy(out, flume.Reader(stream))
	return
}

func ls(path string) (lines []string, err error) {
	gw, svc, err := opengw()
	if err != nil {
		return
	}
	defer svc.Close()

	logical, err := gw.ValidatePath(path)
	if err != nil {
		return
	}
	if logical.Identifier() == "" && !logical.IsRoot() {
		return nil, &gate.NotFoundError{Path: path}
	}
	id := logical.Identifier()
	if logical.IsRoot() {
		id = gw.RootID
	}
	entries, err := gw.Meta.Children(id)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name
		if entry.Kind == "folder" {
			name += "/"
			lines = append(lines, name)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %d", name, entry.Size))
	}
	return
}

func mkdir(path string) (err error) {
	gw, svc, err := opengw()
	if err != nil {
		return
	}
	defer svc.Close()

	logical, err := gw.ValidatePath(path)
	if err != nil {
		return
	}
	logical.Folder = true
	_, err = gw.CreateFolder(logical)
	return
}

func relocate(action, src, dst string) (entry *gate.Entry, created bool, err error) {
	gw, svc, err := opengw()
	if err != nil {
		return
	}
	defer svc.Close()

	srcPath, err := gw.ValidatePath(src)
	if err != nil {
		return
	}
	if srcPath.Identifier() == "" {
		return nil, false, &gate.NotFoundError{Path: src}
	}
	dstPath, err := gw.ValidatePath(dst)
	if err != nil {
		return
	}

	if action == "move" {
		return gw.Move(gw, srcPath, dstPath, "")
	}
	return gw.Copy(gw, srcPath, dstPath, "")
}

func rm(path string) (err error) {
	gw, svc, err := opengw()
	if err != nil {
		return
	}
	defer svc.Close()

	logical, err := gw.ValidatePath(path)
	if err != nil {
		return
	}
	return gw.Delete(logical)
}

func revisions(path string) (lines []string, err error) {
	gw, svc, err := opengw()
	if err != nil {
		return
	}
	defer svc.Close()

	logical, err := gw.ValidatePath(path)
	if err != nil {
		return
	}
	if logical.Identifier() == "" {
		return nil, &gate.NotFoundError{Path: path}
	}
	versions, err := gw.Meta.Revisions(logical.Identifier())
	if err != nil {
		return
	}
	for _, version := range versions {
		lines = append(lines, fmt.Sprintf("v%d %s %d", version.Number, version.Digests["sha256"], version.Size))
	}
	return
}
