package webservices

import (
	"image"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmap/maprenderer"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/jamesrr39/ownmap-editor/ownmaprenderer"
	"github.com/jamesrr39/ownmap-editor/styling"
	"github.com/paulmach/orb"
	"github.com/pkg/profile"
)

const tileSize = 256

type RenderService struct {
	logger        *logpkg.Logger
	editor        *Editor
	renderer      maprenderer.MapRenderer
	styleSet      *styling.StyleSet
	shouldProfile bool
	chi.Router
}

func NewRenderService(logger *logpkg.Logger, editor *Editor, renderer maprenderer.MapRenderer, styleSet *styling.StyleSet, shouldProfile bool) *RenderService {
	rs := &RenderService{logger, editor, renderer, styleSet, shouldProfile, chi.NewRouter()}

	rs.Get("/tile/{z}/{x}/{y}", rs.handleGetTile)
	rs.Get("/bbox", rs.handleGetBBox)

	return rs
}

type renderResponse struct {
	Bound   orb.Bound `json:"bound"`
	Scale   float64   `json:"scale"`
	StyleID string    `json:"styleId"`
	// Covered is false when part of the area hasn't been loaded
	Covered     bool                       `json:"covered"`
	Ops         []*ownmaprenderer.PaintOp  `json:"ops"`
	Diagnostics []ownmapdataset.Diagnostic `json:"diagnostics"`
}

func (rs *RenderService) getStyle(styleID string) (styling.Style, errorsx.Error) {
	if styleID == "" {
		return rs.styleSet.GetDefaultStyle(), nil
	}

	style := rs.styleSet.GetStyleByID(styleID)
	if style == nil {
		return nil, errorsx.Errorf("couldn't get requested style %q (style not loaded)", styleID)
	}

	return style, nil
}

func (rs *RenderService) handleGetTile(w http.ResponseWriter, r *http.Request) {
	ints, err := stringsToInts(chi.URLParam(r, "x"), chi.URLParam(r, "y"), chi.URLParam(r, "z"))
	if err != nil {
		errorsx.HTTPError(w, rs.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	bound, err := XYZToBound(ints[0], ints[1], ints[2])
	if err != nil {
		errorsx.HTTPError(w, rs.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	rs.logger.Debug("rendering tile x, y, z: %d %d %d. Bound: %v", ints[0], ints[1], ints[2], bound)

	rs.render(w, r, bound, image.Pt(tileSize, tileSize))
}

// handleGetBBox renders an arbitrary area. Query: bbox=minLon,minLat,maxLon,maxLat&width=&height=
func (rs *RenderService) handleGetBBox(w http.ResponseWriter, r *http.Request) {
	bound, err := parseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		errorsx.HTTPError(w, rs.logger, err, http.StatusBadRequest)
		return
	}

	width, height := tileSize, tileSize
	if r.URL.Query().Get("width") != "" || r.URL.Query().Get("height") != "" {
		ints, err := stringsToInts(r.URL.Query().Get("width"), r.URL.Query().Get("height"))
		if err != nil {
			errorsx.HTTPError(w, rs.logger, errorsx.Wrap(err), http.StatusBadRequest)
			return
		}
		width, height = ints[0], ints[1]
	}

	rs.render(w, r, bound, image.Pt(width, height))
}

func (rs *RenderService) render(w http.ResponseWriter, r *http.Request, bound orb.Bound, size image.Point) {
	if rs.shouldProfile {
		defer profile.Start().Stop()
	}

	style, err := rs.getStyle(r.URL.Query().Get("styleId"))
	if err != nil {
		errorsx.HTTPError(w, rs.logger, err, http.StatusBadRequest)
		return
	}

	viewport, err := ownmaprenderer.NewMercatorViewport(bound, size)
	if err != nil {
		errorsx.HTTPError(w, rs.logger, err, http.StatusBadRequest)
		return
	}

	painter := ownmaprenderer.NewRecordingPainter()
	var diagnostics []ownmapdataset.Diagnostic
	var covered bool
	err = rs.editor.Do(func(ds *ownmapdataset.DataSet) errorsx.Error {
		err := rs.renderer.Render(r.Context(), ds, style, viewport, painter)
		if err != nil {
			return err
		}
		diagnostics = ds.Diagnostics().All()
		covered = ds.IsCoveredByDataSource(bound)
		return nil
	})
	if err != nil {
		errorsx.HTTPError(w, rs.logger, errorsx.Wrap(err), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, httpextra.DataResponse{Data: renderResponse{
		Bound:       bound,
		Scale:       viewport.Scale(),
		StyleID:     style.GetStyleID(),
		Covered:     covered,
		Ops:         painter.Ops,
		Diagnostics: diagnostics,
	}})
}

func parseBBox(bboxStr string) (orb.Bound, errorsx.Error) {
	fragments := strings.Split(bboxStr, ",")
	if len(fragments) != 4 {
		return orb.Bound{}, errorsx.Errorf("expected bbox as minLon,minLat,maxLon,maxLat but got %q", bboxStr)
	}

	var values [4]float64
	for i, fragment := range fragments {
		value, err := strconv.ParseFloat(fragment, 64)
		if err != nil {
			return orb.Bound{}, errorsx.Wrap(err, "bbox", bboxStr)
		}
		values[i] = value
	}

	return orb.Bound{
		Min: orb.Point{values[0], values[1]},
		Max: orb.Point{values[2], values[3]},
	}, nil
}

func stringsToInts(s ...string) ([]int, error) {
	var ints []int
	for _, str := range s {
		i, err := strconv.Atoi(str)
		if err != nil {
			return nil, err
		}
		ints = append(ints, i)
	}

	return ints, nil
}
