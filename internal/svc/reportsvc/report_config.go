package reportsvc

// ReportConfig holds configuration parameters for the report service.
type ReportConfig struct {
	// Dir is the directory charts are written to
	Dir string `env:"DIR" default:"data/reports"`

	// Width and Height are the size of a chart in pixels
	Width  int `env:"WIDTH" default:"800"`
	Height int `env:"HEIGHT" default:"500"`

	// Format is the image format of charts ("png", "jpeg" or "tiff")
	Format string `env:"FORMAT" default:"png"`

	// Interpolator scales the drawn chart to Width x Height
	// ("nearestneighbor", "catmullrom", "bilinear", "approxbilinear")
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`

	// TopSellers is the number of products in the best sellers chart
	TopSellers int `env:"TOP_SELLERS" default:"10"`
}
