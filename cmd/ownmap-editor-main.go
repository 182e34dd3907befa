package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/goutil/open"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/jamesrr39/ownmap-editor/ownmapdal"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/jamesrr39/ownmap-editor/ownmaprenderer"
	"github.com/jamesrr39/ownmap-editor/styling"
	"github.com/jamesrr39/ownmap-editor/styling/yamlstyle"
	"github.com/jamesrr39/ownmap-editor/webservices"
	"github.com/paulmach/orb"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/pkg/profile"
)

const (
	MAX_SERVER_RUNNING_ATTEMPTS = 50
	DEFAULT_PORT                = 9000
	DEFAULT_STYLE_CACHE_SIZE    = 100000
	DEFAULT_VALIDATE_SIZE       = 1024
)

var logger *logpkg.Logger

func main() {
	if len(os.Args) == 1 {
		logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelInfo)
		// start in desktop "double-click" visual mode
		err := setupDesktopMode()
		if err != nil {
			log.Fatalf("failed to start server: %q\n%s\n", err.Error(), err.Stack())
		}
	} else {
		verbose := kingpin.Flag("v", "verbose logging").Bool()

		setupServe()
		setupValidate()

		kingpin.CommandLine.PreAction(func(ctx *kingpin.ParseContext) error {
			logLevel := logpkg.LogLevelInfo
			if *verbose {
				logLevel = logpkg.LogLevelDebug
			}
			logger = logpkg.NewLogger(os.Stderr, logLevel)
			return nil
		})

		kingpin.Parse()
	}
}

func ensureDefaultPathsConfig(fs gofs.Fs) (*ownmapdal.PathsConfig, errorsx.Error) {
	rootDir, err := userextra.ExpandUser("~/.local/share/github.com/jamesrr39/ownmap-editor/")
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	pathsConfig := &ownmapdal.PathsConfig{
		StylesDir: filepath.Join(rootDir, "styles"),
		DataDir:   filepath.Join(rootDir, "data_files"),
		TraceDir:  filepath.Join(rootDir, "trace"),
	}

	err = pathsConfig.EnsurePaths(fs)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return pathsConfig, nil
}

// loadStyleSet returns the builtin style plus every YAML style in stylesDir
func loadStyleSet(fs gofs.Fs, stylesDir, defaultStyleID string) (*styling.StyleSet, errorsx.Error) {
	styles := []styling.Style{styling.NewCustomBasicStyle()}

	if stylesDir != "" {
		dirStyles, err := yamlstyle.LoadDir(fs, stylesDir)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		styles = append(styles, dirStyles...)
	}

	styleSet, err := styling.NewStyleSet(styles, defaultStyleID)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return styleSet, nil
}

func loadDataFiles(ctx context.Context, fs gofs.Fs, filePaths []string) (*ownmapdataset.DataSet, errorsx.Error) {
	ds := ownmapdataset.NewDataSet(logger)
	for _, filePath := range filePaths {
		_, err := ownmapdal.LoadFile(ctx, logger, fs, filePath, ds)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
	}

	return ds, nil
}

func dataFilesInDir(fs gofs.Fs, dirPath string) ([]string, errorsx.Error) {
	dirItems, err := fs.ReadDir(dirPath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	var filePaths []string
	for _, dirItem := range dirItems {
		switch strings.ToLower(filepath.Ext(dirItem.Name())) {
		case ".osm", ".pbf":
			filePaths = append(filePaths, filepath.Join(dirPath, dirItem.Name()))
		}
	}

	return filePaths, nil
}

func setupDesktopMode() errorsx.Error {
	fs := gofs.NewOsFs()

	pathsConfig, err := ensureDefaultPathsConfig(fs)
	if err != nil {
		return errorsx.Wrap(err)
	}

	styleSet, err := loadStyleSet(fs, pathsConfig.StylesDir, styling.BUILTIN_STYLEID)
	if err != nil {
		return errorsx.Wrap(err)
	}

	filePaths, err := dataFilesInDir(fs, pathsConfig.DataDir)
	if err != nil {
		return errorsx.Wrap(err)
	}

	ds, err := loadDataFiles(context.Background(), fs, filePaths)
	if err != nil {
		return errorsx.Wrap(err)
	}

	traceFile, err := createTraceFile(pathsConfig.TraceDir)
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer traceFile.Close()

	router := createServer(logger, fs, webservices.NewEditor(ds), styleSet, pathsConfig, tracing.NewTracer(traceFile), false)

	server := httpextra.NewServerWithTimeouts()
	server.Addr = fmt.Sprintf("localhost:%d", DEFAULT_PORT)
	server.Handler = router

	errChan := make(chan errorsx.Error)

	go func() {
		err := server.ListenAndServe()
		if err != nil {
			errChan <- errorsx.Wrap(err)
			return
		}
	}()

	go func() {
		// test server is running
		for i := 0; i < MAX_SERVER_RUNNING_ATTEMPTS; i++ {
			client := http.Client{
				Timeout: time.Second * 10,
			}
			resp, err := client.Get(fmt.Sprintf("http://%s/api/info", server.Addr))
			if err != nil {
				// retry after wait
				time.Sleep(time.Millisecond * 500)
				continue
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errChan <- errorsx.Errorf("expected response code %d from /api/info call, but got %d", http.StatusOK, resp.StatusCode)
				return
			}

			errChan <- nil
			return
		}

		errChan <- errorsx.Errorf("server did not start after %d attempts", MAX_SERVER_RUNNING_ATTEMPTS)
	}()

	err = <-errChan
	if err != nil {
		return errorsx.Wrap(err)
	}

	openErr := open.OpenURL(fmt.Sprintf("http://%s/%s/", server.Addr, adminPath))
	if openErr != nil {
		return errorsx.Wrap(openErr)
	}

	// block until the server stops
	return <-errChan
}

var addrHelp = fmt.Sprintf(
	`address to serve on. Ex: ':%d' listen on port %d to traffic from anywhere. 'localhost:%d' listen on port %d to traffic from localhost`,
	DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT,
)

func setupServe() {
	cmd := kingpin.Command("serve", "load OSM files and serve the inspection API")
	addr := cmd.Flag("addr", addrHelp).Default(fmt.Sprintf(":%d", DEFAULT_PORT)).String()
	filePaths := cmd.Arg("files", "OSM files (.osm or .pbf) to load").Strings()
	defaultStyleID := cmd.Flag("default-style-id", "default style to render with").Default(styling.BUILTIN_STYLEID).String()
	stylesDir := cmd.Flag("styles-dir", "path to a folder of YAML style definitions").String()
	traceDir := cmd.Flag("trace-dir", "folder to write request traces to. Defaults to a temp dir").String()
	shouldProfile := cmd.Flag("profile", "profile the request performance").Bool()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		run := func() errorsx.Error {
			fs := gofs.NewOsFs()

			styleSet, err := loadStyleSet(fs, *stylesDir, *defaultStyleID)
			if err != nil {
				return errorsx.Wrap(err)
			}

			ds, err := loadDataFiles(context.Background(), fs, *filePaths)
			if err != nil {
				return errorsx.Wrap(err)
			}

			pathsConfig := &ownmapdal.PathsConfig{
				StylesDir: *stylesDir,
				TraceDir:  *traceDir,
			}
			if len(*filePaths) != 0 {
				pathsConfig.DataDir = filepath.Dir((*filePaths)[0])
			}

			if pathsConfig.TraceDir == "" {
				tempDir, tempErr := os.MkdirTemp("", "ownmap-editor-trace")
				if tempErr != nil {
					return errorsx.Wrap(tempErr)
				}
				pathsConfig.TraceDir = tempDir
			}

			traceFile, err := createTraceFile(pathsConfig.TraceDir)
			if err != nil {
				return errorsx.Wrap(err)
			}
			defer traceFile.Close()

			router := createServer(logger, fs, webservices.NewEditor(ds), styleSet, pathsConfig, tracing.NewTracer(traceFile), *shouldProfile)

			server := httpextra.NewServerWithTimeouts()
			server.Addr = *addr
			server.Handler = router

			logger.Info("about to start serving on %q", *addr)

			serveErr := server.ListenAndServe()
			if serveErr != nil {
				return errorsx.Wrap(serveErr)
			}
			return nil
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

// boundsStrToBound parses [W,N,E,S]. An empty string means the bound of the loaded data.
func boundsStrToBound(boundsStr string) (orb.Bound, bool, errorsx.Error) {
	if boundsStr == "" {
		return orb.Bound{}, false, nil
	}

	fragments := strings.Split(boundsStr, ",")
	if len(fragments) != 4 {
		return orb.Bound{}, false, errorsx.Errorf("expected 4 (or 0) bounds, but found %d", len(fragments))
	}

	var values [4]float64
	for idx, fragment := range fragments {
		value, err := strconv.ParseFloat(strings.TrimSpace(fragment), 64)
		if err != nil {
			return orb.Bound{}, false, errorsx.Wrap(err)
		}
		values[idx] = value
	}

	return orb.Bound{
		Min: orb.Point{values[0], values[3]},
		Max: orb.Point{values[2], values[1]},
	}, true, nil
}

func setupValidate() {
	cmd := kingpin.Command("validate", "load an OSM file, render it once and print the diagnostics")
	filePath := cmd.Arg("file", "OSM file (.osm or .pbf) to validate").Required().String()
	boundsStr := cmd.Flag("bounds", "area to render. [W,N,E,S] Example: -1,1,1,-1. Defaults to the bounds in the file").Default("").String()
	size := cmd.Flag("size", "width and height in pixels of the render").Default(strconv.Itoa(DEFAULT_VALIDATE_SIZE)).Int()
	defaultStyleID := cmd.Flag("style-id", "style to render with").Default(styling.BUILTIN_STYLEID).String()
	stylesDir := cmd.Flag("styles-dir", "path to a folder of YAML style definitions").String()
	shouldProfile := cmd.Flag("profile", "profile the validation performance").Bool()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		if *shouldProfile {
			defer profile.Start().Stop()
		}

		err := runValidate(context.Background(), os.Stdout, gofs.NewOsFs(), *filePath, *boundsStr, *size, *stylesDir, *defaultStyleID)
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

func runValidate(ctx context.Context, w io.Writer, fs gofs.Fs, filePath, boundsStr string, size int, stylesDir, styleID string) errorsx.Error {
	styleSet, err := loadStyleSet(fs, stylesDir, styleID)
	if err != nil {
		return errorsx.Wrap(err)
	}

	ds, err := loadDataFiles(ctx, fs, []string{filePath})
	if err != nil {
		return errorsx.Wrap(err)
	}

	bound, ok, err := boundsStrToBound(boundsStr)
	if err != nil {
		return errorsx.Wrap(err)
	}
	if !ok {
		bound, ok = ds.DataSourceBound()
		if !ok {
			return errorsx.Errorf("no bounds in %q, pass them with --bounds", filePath)
		}
	}

	viewport, err := ownmaprenderer.NewMercatorViewport(bound, image.Pt(size, size))
	if err != nil {
		return errorsx.Wrap(err)
	}

	renderer := ownmaprenderer.NewRenderer(logger, ownmaprenderer.DefaultRenderOptions(), DEFAULT_STYLE_CACHE_SIZE)
	painter := ownmaprenderer.NewRecordingPainter()
	err = renderer.Render(ctx, ds, styleSet.GetDefaultStyle(), viewport, painter)
	if err != nil {
		return errorsx.Wrap(err)
	}

	diagnostics := ds.Diagnostics().All()
	for _, diagnostic := range diagnostics {
		fmt.Fprintf(w, "%s\t%s\t%s\n", diagnostic.Primitive, diagnostic.Severity, diagnostic.Message)
	}
	fmt.Fprintf(w, "%d primitives, %d paint operations, %d diagnostics\n", ds.Len(), len(painter.Ops), len(diagnostics))

	return nil
}

func createTraceFile(traceDir string) (*os.File, errorsx.Error) {
	traceFilePath := filepath.Join(traceDir, fmt.Sprintf("trace_%s.pbf", time.Now().Format("2006-01-02__03_04_05")))
	logger.Info("tracing at %q", traceFilePath)

	traceFile, err := os.Create(traceFilePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return traceFile, nil
}

func isLocalhost(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func createLocalhostMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !isLocalhost(r.RemoteAddr) {
				http.Error(w, "connections only allowed from the same computer the server is running on", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

const (
	adminPath = "admin"
)

func createServer(logger *logpkg.Logger, fs gofs.Fs, editor *webservices.Editor, styleSet *styling.StyleSet, pathsConfig *ownmapdal.PathsConfig, tracer *tracing.Tracer, shouldProfile bool) chi.Router {
	renderer := ownmaprenderer.NewRenderer(logger, ownmaprenderer.DefaultRenderOptions(), DEFAULT_STYLE_CACHE_SIZE)

	router := chi.NewRouter()
	router.Use(middleware.DefaultLogger)
	router.Use(tracing.Middleware(tracer))
	router.Route("/api/", func(r chi.Router) {
		r.Mount("/info", webservices.NewInfoService(logger, editor, styleSet))
		r.Mount("/render/", webservices.NewRenderService(logger, editor, renderer, styleSet, shouldProfile))
		r.Mount("/editor", webservices.NewPrimitiveService(logger, editor))
	})

	if pathsConfig != nil && pathsConfig.DataDir != "" {
		router.Route(fmt.Sprintf("/%s/", adminPath), func(r chi.Router) {
			r.Use(createLocalhostMiddleware())
			r.Mount("/", webservices.NewAdminService(logger, fs, pathsConfig, editor, adminPath))
		})
	}

	return router
}
