package webservices

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/jamesrr39/ownmap-editor/ownmapdal"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/jamesrr39/ownmap-editor/ownmaprenderer"
	"github.com/jamesrr39/ownmap-editor/styling"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logpkg.Logger {
	return logpkg.NewLogger(io.Discard, logpkg.LogLevelDebug)
}

func newTestStyleSet(t *testing.T) *styling.StyleSet {
	styleSet, err := styling.NewStyleSet([]styling.Style{styling.NewCustomBasicStyle()}, styling.BUILTIN_STYLEID)
	require.NoError(t, err)
	return styleSet
}

// newTestDataSet has a primary road (way/1) and a village node (node/3), around 10.5E 59.5N
func newTestDataSet(t *testing.T) *ownmapdataset.DataSet {
	ds := ownmapdataset.NewDataSet(newTestLogger())
	require.NoError(t, ds.AddPrimitive(ownmap.NewNode(1, 59.5, 10.5, nil)))
	require.NoError(t, ds.AddPrimitive(ownmap.NewNode(2, 59.6, 10.6, nil)))
	require.NoError(t, ds.AddPrimitive(ownmap.NewNode(3, 59.55, 10.55, ownmap.TagMap{"place": "village", "name": "Bygda"})))
	require.NoError(t, ds.AddPrimitive(ownmap.NewWay(1, []osm.NodeID{1, 2}, ownmap.TagMap{"highway": "primary"})))
	ds.AddDataSource(ownmapdataset.DataSource{
		Bounds: osm.Bounds{MinLat: 59, MaxLat: 60, MinLon: 10, MaxLon: 11},
		Origin: "test.osm",
	})
	return ds
}

type testRenderResponse struct {
	StyleID string                    `json:"styleId"`
	Covered bool                      `json:"covered"`
	Scale   float64                   `json:"scale"`
	Ops     []*ownmaprenderer.PaintOp `json:"ops"`
}

func opKinds(ops []*ownmaprenderer.PaintOp) []string {
	var kinds []string
	for _, op := range ops {
		kinds = append(kinds, string(op.Kind)+" "+op.Primitive.String())
	}
	return kinds
}

func newTestRenderService(t *testing.T, ds *ownmapdataset.DataSet) *RenderService {
	renderer := ownmaprenderer.NewRenderer(newTestLogger(), ownmaprenderer.DefaultRenderOptions(), 0)
	return NewRenderService(newTestLogger(), NewEditor(ds), renderer, newTestStyleSet(t), false)
}

func TestRenderService_tile(t *testing.T) {
	rs := newTestRenderService(t, newTestDataSet(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/tile/0/0/0", nil)
	rs.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp testRenderResponse
	err := httpextra.DecodeJSONDataResponse(w.Body, &resp)
	require.NoError(t, err)

	assert.Equal(t, styling.BUILTIN_STYLEID, resp.StyleID)
	kinds := opKinds(resp.Ops)
	require.Len(t, kinds, 4)
	assert.Equal(t, "line way/1", kinds[0])
	assert.ElementsMatch(t, []string{"node node/1", "node node/2", "node node/3"}, kinds[1:])

	for _, op := range resp.Ops {
		if op.Primitive == ownmap.NodeID(3) {
			assert.Equal(t, "Bygda", op.Name)
		}
	}
}

func TestRenderService_bbox(t *testing.T) {
	rs := newTestRenderService(t, newTestDataSet(t))

	t.Run("road only", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/bbox?bbox=10.51,59.51,10.54,59.54&width=512&height=512", nil)
		rs.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp testRenderResponse
		err := httpextra.DecodeJSONDataResponse(w.Body, &resp)
		require.NoError(t, err)

		assert.Equal(t, []string{"line way/1"}, opKinds(resp.Ops))
		assert.True(t, resp.Covered)
		require.Len(t, resp.Ops[0].Points, 2)
		assert.Greater(t, resp.Scale, 0.0)
	})

	t.Run("nothing in view", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/bbox?bbox=20,20,21,21", nil)
		rs.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp testRenderResponse
		err := httpextra.DecodeJSONDataResponse(w.Body, &resp)
		require.NoError(t, err)
		assert.Empty(t, resp.Ops)
		assert.False(t, resp.Covered)
	})
}

func TestRenderService_badRequests(t *testing.T) {
	rs := newTestRenderService(t, newTestDataSet(t))

	for _, path := range []string{
		"/tile/a/0/0",
		"/tile/30/0/0",
		"/tile/1/2/0",
		"/tile/0/0/0?styleId=unknown",
		"/bbox?bbox=10,59,11",
		"/bbox?bbox=10,59,10,60",
		"/bbox?bbox=10,59,11,60&width=0&height=256",
	} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			rs.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestXYZToBound(t *testing.T) {
	bound, err := XYZToBound(0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, -180, bound.Min.Lon(), 1e-9)
	assert.InDelta(t, 180, bound.Max.Lon(), 1e-9)
	assert.InDelta(t, 85.0511, bound.Max.Lat(), 1e-4)

	bound, err = XYZToBound(1, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, bound.Min.Lon(), 1e-9)
	assert.InDelta(t, 0, bound.Min.Lat(), 1e-9)
}

func TestInfoService(t *testing.T) {
	ds := newTestDataSet(t)
	ds.GetPrimitiveByID(ownmap.RelationID(5), true)
	ds.SetSelected(ds.GetWay(1))

	ws := NewInfoService(newTestLogger(), NewEditor(ds), newTestStyleSet(t))

	w := httptest.NewRecorder()
	ws.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info infoType
	err := json.NewDecoder(w.Body).Decode(&info)
	require.NoError(t, err)

	assert.Equal(t, stylesType{styling.BUILTIN_STYLEID, []string{styling.BUILTIN_STYLEID}}, info.Style)
	assert.Equal(t, 3, info.Dataset.Nodes)
	assert.Equal(t, 1, info.Dataset.Ways)
	assert.Equal(t, 1, info.Dataset.Relations)
	assert.Equal(t, 1, info.Dataset.Incomplete)
	assert.Equal(t, 1, info.Dataset.Selected)
	require.Len(t, info.Dataset.DataSources, 1)
	assert.Equal(t, "test.osm", info.Dataset.DataSources[0].Origin)
	require.NotNil(t, info.Dataset.Bound)
	assert.Equal(t, 10.0, info.Dataset.Bound.Min.Lon())
}

func TestPrimitiveService_getPrimitive(t *testing.T) {
	ds := newTestDataSet(t)
	ds.Diagnostics().Warnf(ds.GetWay(1), "Style for way '%s' is odd.", "way/1")
	ps := NewPrimitiveService(newTestLogger(), NewEditor(ds))

	w := httptest.NewRecorder()
	ps.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/primitives/node/1", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var node struct {
		ID        ownmap.PrimitiveID   `json:"id"`
		Referrers []ownmap.PrimitiveID `json:"referrers"`
	}
	require.NoError(t, httpextra.DecodeJSONDataResponse(w.Body, &node))
	assert.Equal(t, ownmap.NodeID(1), node.ID)
	assert.Equal(t, []ownmap.PrimitiveID{ownmap.WayID(1)}, node.Referrers)

	w = httptest.NewRecorder()
	ps.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/primitives/way/1", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var way struct {
		Tags        ownmap.TagMap `json:"tags"`
		NodeIDs     []int64       `json:"nodeIds"`
		Diagnostics []struct {
			Severity string `json:"severity"`
			Message  string `json:"message"`
		} `json:"diagnostics"`
	}
	require.NoError(t, httpextra.DecodeJSONDataResponse(w.Body, &way))
	assert.Equal(t, "primary", way.Tags["highway"])
	assert.Equal(t, []int64{1, 2}, way.NodeIDs)
	require.Len(t, way.Diagnostics, 1)
	assert.Equal(t, "Warning", way.Diagnostics[0].Severity)
	assert.Equal(t, "Style for way 'way/1' is odd.", way.Diagnostics[0].Message)

	for path, code := range map[string]int{
		"/primitives/way/99":  http.StatusNotFound,
		"/primitives/area/1":  http.StatusBadRequest,
		"/primitives/node/x1": http.StatusBadRequest,
	} {
		w = httptest.NewRecorder()
		ps.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, w.Code, path)
	}
}

func TestPrimitiveService_selection(t *testing.T) {
	ds := newTestDataSet(t)
	ps := NewPrimitiveService(newTestLogger(), NewEditor(ds))

	body := `{"ids":[{"type":2,"id":1},{"type":1,"id":3}]}`
	w := httptest.NewRecorder()
	ps.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/selection", strings.NewReader(body)))
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	assert.True(t, ds.IsSelected(ds.GetWay(1)))
	assert.True(t, ds.IsSelected(ds.GetNode(3)))

	w = httptest.NewRecorder()
	ps.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/selection", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var selection selectionType
	require.NoError(t, httpextra.DecodeJSONDataResponse(w.Body, &selection))
	assert.Equal(t, []ownmap.PrimitiveID{ownmap.NodeID(3), ownmap.WayID(1)}, selection.IDs)

	// unknown ids leave the selection as it was
	w = httptest.NewRecorder()
	ps.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/selection", strings.NewReader(`{"ids":[{"type":2,"id":42}]}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, ds.GetSelected(), 2)

	w = httptest.NewRecorder()
	ps.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/selection", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrimitiveService_diagnostics(t *testing.T) {
	ds := newTestDataSet(t)
	ds.Diagnostics().Errorf(ds.GetWay(1), "Area style way is not closed.")
	ps := NewPrimitiveService(newTestLogger(), NewEditor(ds))

	w := httptest.NewRecorder()
	ps.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diagnostics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var diagnostics []struct {
		Primitive ownmap.PrimitiveID `json:"primitive"`
		Severity  string             `json:"severity"`
		Message   string             `json:"message"`
	}
	require.NoError(t, httpextra.DecodeJSONDataResponse(w.Body, &diagnostics))
	require.Len(t, diagnostics, 1)
	assert.Equal(t, ownmap.WayID(1), diagnostics[0].Primitive)
	assert.Equal(t, "Error", diagnostics[0].Severity)
}

const testAdminOSMXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <bounds minlat="59.0" minlon="10.0" maxlat="60.0" maxlon="11.0"/>
  <node id="101" lat="59.1" lon="10.1" version="1" visible="true"/>
  <node id="102" lat="59.2" lon="10.2" version="1" visible="true"/>
  <way id="110" version="1" visible="true">
    <nd ref="101"/>
    <nd ref="102"/>
    <tag k="highway" v="track"/>
  </way>
</osm>
`

func newTestAdminService(t *testing.T) (*AdminService, *ownmapdataset.DataSet, mockfs.MockFs) {
	fs := mockfs.NewMockFs()
	pathsConfig := &ownmapdal.PathsConfig{StylesDir: "/ownmap/styles", DataDir: "/ownmap/data"}
	require.NoError(t, pathsConfig.EnsurePaths(fs))

	ds := ownmapdataset.NewDataSet(newTestLogger())
	return NewAdminService(newTestLogger(), fs, pathsConfig, NewEditor(ds), "api/admin"), ds, fs
}

func TestAdminService_load(t *testing.T) {
	as, ds, fs := newTestAdminService(t)
	require.NoError(t, fs.WriteFile("/ownmap/data/extract.osm", []byte(testAdminOSMXML), 0644))
	require.NoError(t, fs.WriteFile("/ownmap/data/notes.txt", []byte("not map data"), 0644))

	w := httptest.NewRecorder()
	as.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "extract.osm")
	assert.NotContains(t, w.Body.String(), "notes.txt")

	w = httptest.NewRecorder()
	as.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/load/extract.osm", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats ownmapdal.LoadStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 2, stats.Nodes)
	assert.Equal(t, 1, stats.Ways)

	require.NotNil(t, ds.GetWay(110))
	assert.Len(t, ds.DataSources(), 1)

	w = httptest.NewRecorder()
	as.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/load/notes.txt", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminService_upload(t *testing.T) {
	as, ds, fs := newTestAdminService(t)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("rawDataFile", "upload.osm")
	require.NoError(t, err)
	_, err = part.Write([]byte(testAdminOSMXML))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/rawDataFile", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	as.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := fs.ReadFile("/ownmap/data/upload.osm")
	require.NoError(t, err)
	assert.Equal(t, testAdminOSMXML, string(stored))

	require.NotNil(t, ds.GetNode(101))
}
