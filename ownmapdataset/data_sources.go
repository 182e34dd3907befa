package ownmapdataset

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
)

// IsOutsideDataSources is true for a node that lies outside every loaded data source area.
// Without any data sources nothing counts as outside.
func (ds *DataSet) IsOutsideDataSources(node *ownmap.Node) bool {
	if len(ds.dataSources) == 0 || !node.HasCoords() {
		return false
	}

	for _, dataSource := range ds.dataSources {
		if ownmap.IsInBounds(dataSource.Bounds, node.Lat(), node.Lon()) {
			return false
		}
	}
	return true
}

// DataSourcesIntersecting returns the data sources whose area overlaps bound (lon/lat)
func (ds *DataSet) DataSourcesIntersecting(bound orb.Bound) []DataSource {
	bounds := ownmap.BoundToBounds(bound)

	var dataSources []DataSource
	for _, dataSource := range ds.dataSources {
		if ownmap.Overlaps(dataSource.Bounds, bounds) {
			dataSources = append(dataSources, dataSource)
		}
	}
	return dataSources
}

// IsCoveredByDataSource is true when bound (lon/lat) lies wholly inside a single data source area
func (ds *DataSet) IsCoveredByDataSource(bound orb.Bound) bool {
	bounds := ownmap.BoundToBounds(bound)
	for _, dataSource := range ds.dataSources {
		if ownmap.IsTotallyInside(dataSource.Bounds, bounds) {
			return true
		}
	}
	return false
}
