package webservices

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/paulmach/orb"
)

var errPrimitiveNotFound = errors.New("primitive not found")

// PrimitiveService exposes single primitives, the selection and the diagnostics of the last render
type PrimitiveService struct {
	logger *logpkg.Logger
	editor *Editor
	chi.Router
}

func NewPrimitiveService(logger *logpkg.Logger, editor *Editor) *PrimitiveService {
	ps := &PrimitiveService{logger, editor, chi.NewRouter()}

	ps.Get("/primitives/{type}/{id}", ps.handleGetPrimitive)
	ps.Get("/selection", ps.handleGetSelection)
	ps.Put("/selection", ps.handlePutSelection)
	ps.Get("/diagnostics", ps.handleGetDiagnostics)

	return ps
}

type primitiveInfoType struct {
	ID         ownmap.PrimitiveID `json:"id"`
	Name       string             `json:"name"`
	Tags       ownmap.TagMap      `json:"tags"`
	Incomplete bool               `json:"incomplete"`
	Selected   bool               `json:"selected"`
	// OutsideDataSources is set for nodes outside every loaded area
	OutsideDataSources bool                       `json:"outsideDataSources,omitempty"`
	Bound              *orb.Bound                 `json:"bound"`
	Referrers          []ownmap.PrimitiveID       `json:"referrers"`
	Members            []ownmap.RelationMember    `json:"members,omitempty"`
	NodeIDs            []int64                    `json:"nodeIds,omitempty"`
	Diagnostics        []ownmapdataset.Diagnostic `json:"diagnostics"`
}

type selectionType struct {
	IDs []ownmap.PrimitiveID `json:"ids"`
}

func primitiveIDFromRequest(r *http.Request) (ownmap.PrimitiveID, errorsx.Error) {
	objectType, err := ownmap.ObjectTypeFromAPIName(chi.URLParam(r, "type"))
	if err != nil {
		return ownmap.PrimitiveID{}, err
	}

	id, parseErr := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if parseErr != nil {
		return ownmap.PrimitiveID{}, errorsx.Wrap(parseErr)
	}

	return ownmap.PrimitiveID{Type: objectType, ID: id}, nil
}

func (ps *PrimitiveService) handleGetPrimitive(w http.ResponseWriter, r *http.Request) {
	id, err := primitiveIDFromRequest(r)
	if err != nil {
		errorsx.HTTPError(w, ps.logger, err, http.StatusBadRequest)
		return
	}

	var info *primitiveInfoType
	err = ps.editor.Do(func(ds *ownmapdataset.DataSet) errorsx.Error {
		p := ds.GetPrimitiveByID(id, false)
		if p == nil {
			return nil
		}

		info = &primitiveInfoType{
			ID:          id,
			Name:        ownmap.DisplayName(p),
			Tags:        p.GetTags(),
			Incomplete:  p.IsIncomplete(),
			Selected:    ds.IsSelected(p),
			Referrers:   []ownmap.PrimitiveID{},
			Diagnostics: ds.Diagnostics().ForPrimitive(id),
		}

		for _, referrer := range ds.GetReferrers(p) {
			info.Referrers = append(info.Referrers, referrer.PrimitiveID())
		}

		var bound orb.Bound
		var ok bool
		switch prim := p.(type) {
		case *ownmap.Node:
			if !prim.IsIncomplete() {
				bound, ok = prim.Point().Bound(), true
			}
			info.OutsideDataSources = ds.IsOutsideDataSources(prim)
		case *ownmap.Way:
			bound, ok = ds.WayBound(prim)
			for _, nodeID := range prim.NodeIDs() {
				info.NodeIDs = append(info.NodeIDs, int64(nodeID))
			}
		case *ownmap.Relation:
			bound, ok = ds.RelationBound(prim)
			info.Members = prim.Members()
		}
		if ok {
			info.Bound = &bound
		}

		return nil
	})
	if err != nil {
		errorsx.HTTPError(w, ps.logger, err, http.StatusInternalServerError)
		return
	}

	if info == nil {
		errorsx.HTTPError(w, ps.logger, errorsx.Wrap(errPrimitiveNotFound, "id", id.String()), http.StatusNotFound)
		return
	}

	render.JSON(w, r, httpextra.DataResponse{Data: info})
}

func (ps *PrimitiveService) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	selection := selectionType{IDs: []ownmap.PrimitiveID{}}

	err := ps.editor.Do(func(ds *ownmapdataset.DataSet) errorsx.Error {
		for _, p := range ds.GetSelected() {
			selection.IDs = append(selection.IDs, p.PrimitiveID())
		}
		return nil
	})
	if err != nil {
		errorsx.HTTPError(w, ps.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, httpextra.DataResponse{Data: selection})
}

// handlePutSelection replaces the selection. Unknown ids are rejected and leave the selection untouched.
func (ps *PrimitiveService) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	var selection selectionType
	decodeErr := json.NewDecoder(r.Body).Decode(&selection)
	if decodeErr != nil {
		errorsx.HTTPError(w, ps.logger, errorsx.Wrap(decodeErr), http.StatusBadRequest)
		return
	}

	var notFound []ownmap.PrimitiveID
	err := ps.editor.Do(func(ds *ownmapdataset.DataSet) errorsx.Error {
		var primitives []ownmap.Primitive
		for _, id := range selection.IDs {
			p := ds.GetPrimitiveByID(id, false)
			if p == nil {
				notFound = append(notFound, id)
				continue
			}
			primitives = append(primitives, p)
		}

		if len(notFound) != 0 {
			return nil
		}

		ds.SetSelected(primitives...)
		return nil
	})
	if err != nil {
		errorsx.HTTPError(w, ps.logger, err, http.StatusInternalServerError)
		return
	}

	if len(notFound) != 0 {
		errorsx.HTTPError(w, ps.logger, errorsx.Wrap(errPrimitiveNotFound, "ids", notFound), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (ps *PrimitiveService) handleGetDiagnostics(w http.ResponseWriter, r *http.Request) {
	var diagnostics []ownmapdataset.Diagnostic
	err := ps.editor.Do(func(ds *ownmapdataset.DataSet) errorsx.Error {
		diagnostics = ds.Diagnostics().All()
		return nil
	})
	if err != nil {
		errorsx.HTTPError(w, ps.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, httpextra.DataResponse{Data: diagnostics})
}
