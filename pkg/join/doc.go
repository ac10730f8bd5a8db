// Package join implements the join features: parametric objects that
// combine a Base solid with a Tool solid while keeping internal voids of
// the base intact.
//
// A join runs in one of four modes:
//
//	Bypass   compound of base and tool, no boolean computed
//	Cutout   base with the tool cut out
//	Embed    cutout fused with the tool
//	Connect  cutout and tool-minus-base fused with their common part
//
// Cuts may split a solid into pieces. The piece that belongs to the result
// is always the one with the largest volume (see ShapeOfMaxVol); the rest
// are fragments of the other operand that ended up inside a void.
package join
