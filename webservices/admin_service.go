package webservices

import (
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmapdal"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
)

// AdminService lists the OSM files in the data dir, and loads them into the data set
type AdminService struct {
	logger            *logpkg.Logger
	fs                gofs.Fs
	pathsConfig       *ownmapdal.PathsConfig
	editor            *Editor
	routerURLBasePath string
	chi.Router
}

func NewAdminService(
	logger *logpkg.Logger,
	fs gofs.Fs,
	pathsConfig *ownmapdal.PathsConfig,
	editor *Editor,
	routerURLBasePath string,
) *AdminService {
	as := &AdminService{logger, fs, pathsConfig, editor, routerURLBasePath, chi.NewRouter()}

	as.Router.Get("/", as.handleGet)
	as.Router.Post("/load/{fileName}", as.handlePostLoad)
	as.Router.Post("/rawDataFile", as.handlePostRawDataFile)

	return as
}

func (as *AdminService) dataFileNames() ([]string, errorsx.Error) {
	dirItems, err := as.fs.ReadDir(as.pathsConfig.DataDir)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	fileNames := []string{}
	for _, dirItem := range dirItems {
		if dirItem.IsDir() || !isOSMFileName(dirItem.Name()) {
			continue
		}
		fileNames = append(fileNames, dirItem.Name())
	}

	return fileNames, nil
}

func isOSMFileName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".osm" || ext == ".pbf"
}

func (as *AdminService) load(r *http.Request, fileName string) (*ownmapdal.LoadStats, errorsx.Error) {
	filePath := filepath.Join(as.pathsConfig.DataDir, fileName)

	var stats *ownmapdal.LoadStats
	err := as.editor.Do(func(ds *ownmapdataset.DataSet) errorsx.Error {
		var err errorsx.Error
		stats, err = ownmapdal.LoadFile(r.Context(), as.logger, as.fs, filePath, ds)
		return err
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (as *AdminService) handlePostLoad(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "fileName")
	if fileName != filepath.Base(fileName) || !isOSMFileName(fileName) {
		errorsx.HTTPError(w, as.logger, errorsx.Errorf("invalid file name: %q", fileName), http.StatusBadRequest)
		return
	}

	stats, err := as.load(r, fileName)
	if err != nil {
		errorsx.HTTPError(w, as.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, stats)
}

// handlePostRawDataFile copies an uploaded OSM file into the data dir and loads it
func (as *AdminService) handlePostRawDataFile(w http.ResponseWriter, r *http.Request) {
	multipartFile, formData, err := r.FormFile("rawDataFile")
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}
	defer multipartFile.Close()

	fileName := filepath.Base(formData.Filename)
	if !isOSMFileName(fileName) {
		errorsx.HTTPError(w, as.logger, errorsx.Errorf("expected a .osm or .pbf file but got %q", fileName), http.StatusBadRequest)
		return
	}

	file, err := as.fs.Create(filepath.Join(as.pathsConfig.DataDir, fileName))
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusInternalServerError)
		return
	}

	_, err = io.Copy(file, multipartFile)
	if err != nil {
		file.Close()
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusInternalServerError)
		return
	}

	err = file.Close()
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusInternalServerError)
		return
	}

	stats, loadErr := as.load(r, fileName)
	if loadErr != nil {
		errorsx.HTTPError(w, as.logger, loadErr, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, stats)
}

func (as *AdminService) handleGet(w http.ResponseWriter, r *http.Request) {
	fileNames, err := as.dataFileNames()
	if err != nil {
		errorsx.HTTPError(w, as.logger, err, http.StatusInternalServerError)
		return
	}

	var dataSources []ownmapdataset.DataSource
	as.editor.Do(func(ds *ownmapdataset.DataSet) errorsx.Error {
		dataSources = ds.DataSources()
		return nil
	})

	data := map[string]interface{}{
		"RouterURLBasePath": as.routerURLBasePath,
		"DataDir":           as.pathsConfig.DataDir,
		"StylesDir":         as.pathsConfig.StylesDir,
		"DataFileNames":     fileNames,
		"DataSources":       dataSources,
	}

	tmplErr := adminTmpl.Execute(w, data)
	if tmplErr != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(tmplErr), http.StatusInternalServerError)
		return
	}
}

var adminTmpl *template.Template

func init() {
	var err error
	adminTmpl, err = template.New("admin/index.html").Parse(adminTemplate)
	if err != nil {
		panic(err)
	}
}

const adminTemplate = `
<html>
	<head>
		<title>admin</title>
		<style type="text/css">
		div {
			margin: 10px;
			border: 1px solid grey;
			padding: 10px;
		}
		</style>
		<script>
		function loadDataFile(fileName) {
			fetch('/{{.RouterURLBasePath}}/load/' + encodeURIComponent(fileName), {method: 'POST'})
				.then(() => window.location.reload())
				.catch(e => {
					console.error(e);
					alert('failed to load data file: ' + e);
				});
		}

		function submitRawDataFile(formEl) {
			const formData = new FormData(formEl);

			fetch('/{{.RouterURLBasePath}}/rawDataFile', {method: 'POST', body: formData})
				.then(() => window.location.reload())
				.catch(e => {
					console.error(e);
					alert('failed to upload raw data file: ' + e);
				});
		}
		</script>
	</head>
	<body>
		<h1>Admin settings</h1>
		<div>
			<h2>Loaded data sources</h2>
			{{range .DataSources}}
				<p>{{.Origin}}: [{{.Bounds.MinLon}}, {{.Bounds.MinLat}}, {{.Bounds.MaxLon}}, {{.Bounds.MaxLat}}]</p>
			{{end}}
		</div>

		<div>
			<h2>Data files in <pre>{{.DataDir}}</pre></h2>
			{{range .DataFileNames}}
				<p>
					{{.}} <button onclick="loadDataFile('{{.}}')">Load</button>
				</p>
			{{end}}
		</div>

		<div>
			<h2>Styles</h2>
			<p>Style files (.yaml) are read from <pre>{{.StylesDir}}</pre> on startup</p>
		</div>

		<div>
			<h3>Upload an OpenStreetMap extract</h3>
			<form action="javascript:;" method="POST" enctype="multipart/form-data" onsubmit="submitRawDataFile(this)" name="rawDataUploadForm">
				<p>The file (.osm or .pbf) is copied into <pre>{{.DataDir}}</pre> and loaded into the data set</p>
				<p>
					<label>
						OpenStreetMap extract file
						<input type="file" name="rawDataFile" />
					</label>
				</p>
				<input type="submit" value="Go!" />
			</form>
		</div>
	</body>
</html>
`
