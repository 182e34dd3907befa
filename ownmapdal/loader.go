package ownmapdal

import (
	"context"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/paulmach/osm"
)

type LoadStats struct {
	Nodes        int           `json:"nodes"`
	Ways         int           `json:"ways"`
	Relations    int           `json:"relations"`
	Placeholders int           `json:"placeholders"`
	DataSources  int           `json:"dataSources"`
	Skipped      int           `json:"skipped"`
	Duration     time.Duration `json:"duration"`
}

// LoadIntoDataSet reads every object from the scanner into the data set.
// Way nodes and relation members not (yet) in the data set are registered as incomplete placeholders,
// which are filled in if the object turns up later in the stream.
func LoadIntoDataSet(ctx context.Context, logger *logpkg.Logger, scanner Scanner, ds *ownmapdataset.DataSet, origin string) (*LoadStats, errorsx.Error) {
	startTime := time.Now()
	stats := new(LoadStats)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, errorsx.Wrap(ctx.Err())
		}

		var err errorsx.Error
		switch obj := scanner.Object().(type) {
		case *osm.Bounds:
			ds.AddDataSource(ownmapdataset.DataSource{Bounds: *obj, Origin: origin})
			stats.DataSources++
		case *osm.Node:
			err = ds.CompletePrimitive(ownmap.NewNodeFromOSMNode(obj))
			stats.Nodes++
		case *osm.Way:
			for _, wayNode := range obj.Nodes {
				stats.Placeholders += ensurePrimitive(ds, ownmap.PrimitiveID{Type: ownmap.ObjectTypeNode, ID: int64(wayNode.ID)})
			}
			err = ds.CompletePrimitive(ownmap.NewWayFromOSMWay(obj))
			stats.Ways++
		case *osm.Relation:
			var relation *ownmap.Relation
			relation, err = ownmap.NewRelationFromOSMRelation(obj)
			if err != nil {
				break
			}
			for _, member := range relation.Members() {
				stats.Placeholders += ensurePrimitive(ds, member.Ref)
			}
			err = ds.CompletePrimitive(relation)
			stats.Relations++
		default:
			logger.Debug("skipping object %v", obj.ObjectID())
			stats.Skipped++
		}
		if err != nil {
			return nil, errorsx.Wrap(err, "origin", origin)
		}
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return nil, errorsx.Wrap(scanErr, "origin", origin)
	}

	// nodes completed after their ways were added need the way bboxes updated
	ds.ReindexAll()

	stats.Duration = time.Since(startTime)
	logger.Info("loaded %q: %d nodes, %d ways, %d relations, %d placeholders in %s",
		origin, stats.Nodes, stats.Ways, stats.Relations, stats.Placeholders, stats.Duration)

	return stats, nil
}

func ensurePrimitive(ds *ownmapdataset.DataSet, id ownmap.PrimitiveID) int {
	if ds.GetPrimitiveByID(id, false) != nil {
		return 0
	}
	ds.GetPrimitiveByID(id, true)
	return 1
}

// LoadFile opens the file and loads it into the data set, with the file path as the data source origin
func LoadFile(ctx context.Context, logger *logpkg.Logger, fs gofs.Fs, path string, ds *ownmapdataset.DataSet) (*LoadStats, errorsx.Error) {
	scanner, err := OpenFile(ctx, fs, path)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	return LoadIntoDataSet(ctx, logger, scanner, ds, path)
}
