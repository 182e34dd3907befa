package multipolygon

import (
	"math"

	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

const (
	RoleFrom = "from"
	RoleTo   = "to"
	RoleVia  = "via"
)

const (
	// distance of the icon from the via node, along the from way
	restrictionDistanceFromVia = 14
	// distance of the icon from the from way
	restrictionDistanceFromWay = 10
)

// RestrictionIcon places a restriction icon next to the via node.
// The icon goes at Via + (VX, VY) + (VX2, VY2), rotated by IconAngle degrees.
type RestrictionIcon struct {
	Via       orb.Point
	VX, VY    float64
	VX2, VY2  float64
	IconAngle float64
}

// Restriction checks the from, via and to members of a turn restriction and works out where its icon goes.
// The bool is false when the relation can't be drawn: a member isn't loaded, or something is reported as wrong.
func (a *Assembler) Restriction(r *ownmap.Relation, leftHandTraffic bool) (*RestrictionIcon, bool) {
	var fromWay, toWay *ownmap.Way
	var via ownmap.Primitive

	for _, member := range r.Members() {
		p := a.resolveMember(member)
		if p == nil {
			return nil, false
		}
		if p.IsDeleted() {
			a.reporter.Errorf(r, "Deleted member '%s' in relation.", ownmap.DisplayName(p))
			continue
		}
		if p.IsIncomplete() {
			return nil, false
		}

		switch prim := p.(type) {
		case *ownmap.Way:
			if prim.NodeCount() < 2 {
				a.reporter.Errorf(r, "Way '%s' with less than two points.", ownmap.DisplayName(prim))
				continue
			}

			switch member.Role {
			case RoleFrom:
				if fromWay != nil {
					a.reporter.Errorf(r, "More than one \"from\" way found.")
				} else {
					fromWay = prim
				}
			case RoleTo:
				if toWay != nil {
					a.reporter.Errorf(r, "More than one \"to\" way found.")
				} else {
					toWay = prim
				}
			case RoleVia:
				if via != nil {
					a.reporter.Errorf(r, "More than one \"via\" found.")
				} else {
					via = prim
				}
			default:
				a.reporter.Errorf(r, "Unknown role '%s'.", member.Role)
			}
		case *ownmap.Node:
			if member.Role != RoleVia {
				a.reporter.Errorf(r, "Unknown role '%s'.", member.Role)
				continue
			}
			if via != nil {
				a.reporter.Errorf(r, "More than one \"via\" found.")
			} else {
				via = prim
			}
		default:
			a.reporter.Errorf(r, "Unknown member type for '%s'.", ownmap.DisplayName(p))
		}
	}

	if fromWay == nil {
		a.reporter.Errorf(r, "No \"from\" way found.")
		return nil, false
	}
	if toWay == nil {
		a.reporter.Errorf(r, "No \"to\" way found.")
		return nil, false
	}
	if via == nil {
		a.reporter.Errorf(r, "No \"via\" node or way found.")
		return nil, false
	}

	var viaNodeID osm.NodeID
	switch v := via.(type) {
	case *ownmap.Node:
		viaNodeID = v.NodeID()
		if !fromWay.IsFirstLastNode(viaNodeID) {
			a.reporter.Errorf(r, "The \"from\" way doesn't start or end at a \"via\" node.")
			return nil, false
		}
		if !toWay.IsFirstLastNode(viaNodeID) {
			a.reporter.Errorf(r, "The \"to\" way doesn't start or end at a \"via\" node.")
		}
	case *ownmap.Way:
		firstNodeID, lastNodeID := v.FirstNodeID(), v.LastNodeID()
		onewayVia := false
		if oneway, ok := v.GetTag("oneway"); ok {
			if oneway == "-1" {
				onewayVia = true
				firstNodeID, lastNodeID = lastNodeID, firstNodeID
			} else {
				onewayVia = isOsmTrue(oneway)
			}
		}

		switch {
		case fromWay.IsFirstLastNode(firstNodeID):
			viaNodeID = firstNodeID
		case !onewayVia && fromWay.IsFirstLastNode(lastNodeID):
			viaNodeID = lastNodeID
		default:
			a.reporter.Errorf(r, "The \"from\" way doesn't start or end at the \"via\" way.")
			return nil, false
		}

		otherEnd := firstNodeID
		if viaNodeID == firstNodeID {
			otherEnd = lastNodeID
		}
		if !toWay.IsFirstLastNode(otherEnd) {
			a.reporter.Errorf(r, "The \"to\" way doesn't start or end at the \"via\" way.")
		}
	}

	// the node of the from way next to the via node
	fromNodeID := fromWay.NodeIDAt(fromWay.NodeCount() - 2)
	if fromWay.FirstNodeID() == viaNodeID {
		fromNodeID = fromWay.NodeIDAt(1)
	}

	fromNode := a.graph.GetNode(fromNodeID)
	viaNode := a.graph.GetNode(viaNodeID)
	if fromNode == nil || viaNode == nil || !fromNode.HasCoords() || !viaNode.HasCoords() {
		return nil, false
	}

	return restrictionIcon(a.projector.Point(fromNode), a.projector.Point(viaNode), leftHandTraffic), true
}

func restrictionIcon(pFrom, pVia orb.Point, leftHandTraffic bool) *RestrictionIcon {
	dx := math.Abs(pFrom.X() - pVia.X())
	dy := math.Abs(pFrom.Y() - pVia.Y())

	fromAngle := math.Pi / 2
	if dx != 0 {
		fromAngle = math.Atan(dy / dx)
	}
	fromAngleDeg := toDegrees(fromAngle)

	// back along the from way, away from the via node
	vx := restrictionDistanceFromVia * math.Cos(fromAngle)
	vy := restrictionDistanceFromVia * math.Sin(fromAngle)
	if pFrom.X() < pVia.X() {
		vx = -vx
	}
	if pFrom.Y() < pVia.Y() {
		vy = -vy
	}

	// off to the side of the from way, at a right angle
	offset := func(useSin bool, angleDeg float64) (float64, float64) {
		angle := toRadians(angleDeg)
		if useSin {
			return restrictionDistanceFromWay * math.Sin(angle), restrictionDistanceFromWay * math.Cos(angle)
		}
		return restrictionDistanceFromWay * math.Cos(angle), restrictionDistanceFromWay * math.Sin(angle)
	}

	var vx2, vy2, iconAngle float64
	switch {
	case pFrom.X() >= pVia.X() && pFrom.Y() >= pVia.Y():
		if leftHandTraffic {
			vx2, vy2 = offset(false, fromAngleDeg+90)
		} else {
			vx2, vy2 = offset(false, fromAngleDeg-90)
		}
		iconAngle = 270 + fromAngleDeg
	case pFrom.X() < pVia.X() && pFrom.Y() >= pVia.Y():
		if leftHandTraffic {
			vx2, vy2 = offset(true, fromAngleDeg+180)
		} else {
			vx2, vy2 = offset(true, fromAngleDeg)
		}
		iconAngle = 90 - fromAngleDeg
	case pFrom.X() < pVia.X() && pFrom.Y() < pVia.Y():
		if leftHandTraffic {
			vx2, vy2 = offset(false, fromAngleDeg-90)
		} else {
			vx2, vy2 = offset(false, fromAngleDeg+90)
		}
		iconAngle = 90 + fromAngleDeg
	default:
		if leftHandTraffic {
			vx2, vy2 = offset(true, fromAngleDeg)
		} else {
			vx2, vy2 = offset(true, fromAngleDeg+180)
		}
		iconAngle = 270 - fromAngleDeg
	}

	return &RestrictionIcon{
		Via:       pVia,
		VX:        vx,
		VY:        vy,
		VX2:       vx2,
		VY2:       vy2,
		IconAngle: iconAngle,
	}
}

func toDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func isOsmTrue(value string) bool {
	switch value {
	case "yes", "true", "1":
		return true
	}
	return false
}
