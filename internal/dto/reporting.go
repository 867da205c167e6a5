package dto

// ReportQuery holds the shared query string of the reporting endpoints.
type ReportQuery struct {
	Date             string `form:"date"`
	From             string `form:"from"`
	To               string `form:"to"`
	ProductID        string `form:"productId"`
	GodownID         string `form:"godownId"`
	SiloID           string `form:"siloId"`
	IncludeCancelled bool   `form:"includeCancelled"`
}
