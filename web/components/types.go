package components

// QRStats is what the preview panel shows next to the image.
type QRStats struct {
	Version int
	Black   int
	White   int
	Total   int
	Size    int
}

// EmptyStats is shown before anything has been encoded: a version 1 symbol
// with no border at scale 1.
var EmptyStats = QRStats{Version: 1, Size: 21, Total: 441, White: 441}
