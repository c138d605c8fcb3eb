package googlebooks

// volumesResponse is the top-level response of the volumes search endpoint.
type volumesResponse struct {
	Kind       string   `json:"kind"`
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

// volume is a single volume record.
type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

// volumeInfo carries the descriptive metadata of a volume.
type volumeInfo struct {
	Title         string      `json:"title"`
	Authors       []string    `json:"authors"`
	Description   string      `json:"description"`
	AverageRating *float64    `json:"averageRating"`
	Categories    []string    `json:"categories"`
	ImageLinks    *imageLinks `json:"imageLinks"`
}

// imageLinks holds the cover image URLs of a volume.
type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}
