package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/binzume/sceneview/engine"
	"github.com/binzume/sceneview/geom"
	"github.com/binzume/sceneview/gltfengine"
	"github.com/binzume/sceneview/viewer"
	"go.uber.org/zap"
)

type options struct {
	viewable  string
	index     int
	ray       string
	explode   float64
	spin      float64
	thumbnail string
	thumbSize int
	timeout   time.Duration
}

// resolveInput returns the document root and urn for a file path or a urn.
func resolveInput(input, root string) (string, string) {
	if _, err := os.Stat(input); err == nil {
		return filepath.Dir(input), gltfengine.EncodeURN(filepath.Base(input))
	}
	return root, input
}

// parsePoint parses a canvas point "x,y".
func parsePoint(s string) (*geom.Vector2, error) {
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return nil, fmt.Errorf("invalid point %q (want x,y)", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 32)
	if err != nil {
		return nil, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 32)
	if err != nil {
		return nil, err
	}
	return geom.NewVector2(float32(x), float32(y)), nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] model.glb|manifest.yaml|urn\n", os.Args[0])
		flag.PrintDefaults()
	}
	configFile := flag.String("config", "", "YAML config file")
	root := flag.String("root", "", "document directory (default: .)")
	baseURL := flag.String("url", "", "load documents over HTTP below this URL")
	token := flag.String("token", "", "static access token")
	clientID := flag.String("client-id", "", "OAuth2 client id")
	clientSecret := flag.String("client-secret", "", "OAuth2 client secret")
	tokenURL := flag.String("token-url", "", "OAuth2 token endpoint")
	width := flag.Int("width", 0, "canvas width")
	height := flag.Int("height", 0, "canvas height")
	verbose := flag.Bool("v", false, "debug logging")

	var opt options
	flag.StringVar(&opt.viewable, "viewable", "", "viewable guid")
	flag.IntVar(&opt.index, "index", 0, "geometry viewable index")
	flag.StringVar(&opt.ray, "ray", "", "ray cast at canvas point x,y")
	flag.Float64Var(&opt.explode, "explode", 0, "move fragments away from the model center by this factor")
	flag.Float64Var(&opt.spin, "spin", 0, "rotate every fragment around Y (degrees)")
	flag.StringVar(&opt.thumbnail, "thumbnail", "", "write the document thumbnail to this PNG file")
	flag.IntVar(&opt.thumbSize, "thumbsize", 256, "thumbnail size (0: original)")
	flag.DurationVar(&opt.timeout, "timeout", time.Minute, "load timeout")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	conf, err := loadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			conf.Root = *root
		case "width":
			conf.Width = *width
		case "height":
			conf.Height = *height
		case "url", "token", "client-id", "client-secret", "token-url":
			if conf.Server == nil {
				conf.Server = &ServerConfig{}
			}
		}
	})
	if conf.Server != nil {
		if *baseURL != "" {
			conf.Server.BaseURL = *baseURL
		}
		if *token != "" {
			conf.Server.Token = *token
		}
		if *clientID != "" {
			conf.Server.ClientID = *clientID
		}
		if *clientSecret != "" {
			conf.Server.ClientSecret = *clientSecret
		}
		if *tokenURL != "" {
			conf.Server.TokenURL = *tokenURL
		}
	}
	if *verbose {
		conf.LogLevel = "debug"
	}

	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	gltfengine.SetLogger(logger.Named("engine"))

	if err := run(conf, flag.Arg(0), &opt, logger); err != nil {
		logger.Fatal("failed", zap.Error(err))
	}
}

func run(conf *Config, input string, opt *options, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), opt.timeout)
	defer cancel()

	engineOpts := &gltfengine.Options{Root: conf.Root}
	urn := input
	if conf.Server != nil && conf.Server.BaseURL != "" {
		engineOpts.BaseURL = conf.Server.BaseURL
	} else {
		engineOpts.Root, urn = resolveInput(input, conf.Root)
	}

	v, err := viewer.Initialize(ctx, gltfengine.NewInitializer(engineOpts),
		&engine.Container{Width: conf.Width, Height: conf.Height}, conf.tokenProvider(ctx))
	if err != nil {
		return err
	}

	sel := viewer.ByIndex(opt.index)
	if opt.viewable != "" {
		sel = viewer.ByGUID(opt.viewable)
	}
	node, err := v.Load(ctx, urn, sel)
	if err != nil {
		return err
	}
	logger.Info("viewable loaded", zap.String("name", node.Name), zap.String("guid", node.GUID))
	if err := v.WaitFor(ctx, engine.GeometryLoaded); err != nil {
		return err
	}

	if err := printViewable(os.Stdout, node); err != nil {
		return err
	}
	if err := printTree(ctx, os.Stdout, v); err != nil {
		return err
	}

	if opt.explode != 0 || opt.spin != 0 {
		if err := explode(ctx, v, float32(opt.explode), float32(opt.spin)); err != nil {
			return err
		}
		v.Refresh()
	}
	if err := printFragments(ctx, os.Stdout, v); err != nil {
		return err
	}

	if opt.ray != "" {
		p, err := parsePoint(opt.ray)
		if err != nil {
			return err
		}
		hits := v.RayCast(p.X, p.Y)
		printHits(os.Stdout, hits)
		if len(hits) > 0 {
			v.AddCustomMesh(hitMarker(&hits[0].Point, 0.05), "")
		}
	}

	if opt.thumbnail != "" {
		if err := writeThumbnail(ctx, v.Engine(), urn, opt.thumbnail, opt.thumbSize); err != nil {
			return err
		}
		logger.Info("thumbnail written", zap.String("file", opt.thumbnail))
	}
	return nil
}

// hitMarker is a square of size 2*r around p, facing +Z.
func hitMarker(p *geom.Vector3, r float32) *engine.Mesh {
	return engine.NewPolygonMesh("hit", []*geom.Vector3{
		{X: p.X - r, Y: p.Y - r, Z: p.Z},
		{X: p.X + r, Y: p.Y - r, Z: p.Z},
		{X: p.X + r, Y: p.Y + r, Z: p.Z},
		{X: p.X - r, Y: p.Y + r, Z: p.Z},
	})
}

// explode moves each fragment away from the model center and spins it around Y
// by angle degrees.
func explode(ctx context.Context, v *viewer.Viewer, factor, angle float32) error {
	frags, err := v.ListFragments(ctx)
	if err != nil {
		return err
	}
	center := v.Engine().Model().BoundingBox().Center()
	rot := geom.NewEulerDegrees(0, angle, 0, geom.RotationOrderXYZ).ToQuaternion()
	for _, id := range frags {
		b, err := v.FragmentBounds(id)
		if err != nil {
			return err
		}
		pos := b.Center().Sub(center).Scale(factor)
		if err := v.SetFragmentAuxTransform(id, nil, rot, pos); err != nil {
			return err
		}
	}
	return nil
}

func writeThumbnail(ctx context.Context, ev engine.Viewer, urn, file string, size int) error {
	docCh := make(chan engine.Document, 1)
	errCh := make(chan error, 1)
	ev.LoadDocument(urn, func(d engine.Document) { docCh <- d }, func(code engine.ErrorCode, msg string) {
		errCh <- &engine.LoadError{Code: code, Message: msg}
	})
	var doc engine.Document
	select {
	case doc = <-docCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
	d, ok := doc.(*gltfengine.Document)
	if !ok {
		return fmt.Errorf("document %T has no thumbnail support", doc)
	}
	img, err := d.Thumbnail(ctx, size)
	if err != nil {
		return err
	}
	w, err := os.Create(file)
	if err != nil {
		return err
	}
	defer w.Close()
	return png.Encode(w, img)
}
