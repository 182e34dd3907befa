package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/jamesrr39/ownmap-editor/styling"
	"github.com/paulmach/orb"
)

func NewInfoService(logger *logpkg.Logger, editor *Editor, styleSet *styling.StyleSet) *InfoService {
	ws := &InfoService{logger, editor, styleSet, chi.NewRouter()}
	ws.Get("/", ws.handleGet)

	return ws
}

type InfoService struct {
	logger   *logpkg.Logger
	editor   *Editor
	styleSet *styling.StyleSet
	chi.Router
}

type stylesType struct {
	DefaultStyleID string   `json:"defaultStyleId"`
	StyleIDs       []string `json:"styleIds"`
}

type datasetInfoType struct {
	Version     string                     `json:"version"`
	Generation  uint64                     `json:"generation"`
	Nodes       int                        `json:"nodes"`
	Ways        int                        `json:"ways"`
	Relations   int                        `json:"relations"`
	Incomplete  int                        `json:"incomplete"`
	Selected    int                        `json:"selected"`
	DataSources []ownmapdataset.DataSource `json:"dataSources"`
	Bound       *orb.Bound                 `json:"bound"`
}

type infoType struct {
	Style   stylesType      `json:"style"`
	Dataset datasetInfoType `json:"dataset"`
}

func (ws *InfoService) handleGet(w http.ResponseWriter, r *http.Request) {
	var info datasetInfoType

	err := ws.editor.Do(func(ds *ownmapdataset.DataSet) errorsx.Error {
		info = datasetInfoType{
			Version:     ds.Version(),
			Generation:  ds.Generation(),
			Nodes:       len(ds.GetNodes()),
			Ways:        len(ds.GetWays()),
			Relations:   len(ds.GetRelations()),
			Selected:    len(ds.GetSelected()),
			DataSources: ds.DataSources(),
		}

		for _, p := range ds.AllPrimitives() {
			if p.IsIncomplete() {
				info.Incomplete++
			}
		}

		bound, ok := ds.DataSourceBound()
		if ok {
			info.Bound = &bound
		}
		return nil
	})
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
		return
	}

	style := stylesType{
		ws.styleSet.GetDefaultStyle().GetStyleID(),
		ws.styleSet.GetAllStyleIDs(),
	}

	render.JSON(w, r, infoType{style, info})
}
