package rpc

// worldBands splits the globe into latitude bands. Cells are narrower where
// traffic is dense.
var worldBands = []struct {
	south, north, step float64
}{
	{-90, -30, 90},
	{-30, 0, 45},
	{0, 30, 30},
	{30, 60, 15},
	{60, 90, 45},
}

// WorldCells returns bounding boxes covering the globe without overlap,
// ordered south to north then west to east.
func WorldCells() []BoundingBox {
	var cells []BoundingBox
	for _, band := range worldBands {
		for west := -180.0; west < 180; west += band.step {
			cells = append(cells, BoundingBox{
				South: band.south,
				North: band.north,
				West:  west,
				East:  west + band.step,
			})
		}
	}
	return cells
}
