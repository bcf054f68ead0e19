package crossref

// workResponse is the envelope CrossRef wraps around a single work.
type workResponse struct {
	Status  string `json:"status"`
	Message Work   `json:"message"`
}

// workListResponse is the envelope around a work search result list.
type workListResponse struct {
	Status  string `json:"status"`
	Message struct {
		Items []Work `json:"items"`
	} `json:"message"`
}

// journalListResponse is the envelope around a journal search result list.
type journalListResponse struct {
	Status  string `json:"status"`
	Message struct {
		Items []Journal `json:"items"`
	} `json:"message"`
}

// Work is the subset of a CrossRef work record the verification checks
// consume. CrossRef models titles as lists; the first entry is primary.
type Work struct {
	DOI            string    `json:"DOI"`
	Title          []string  `json:"title"`
	ContainerTitle []string  `json:"container-title"`
	Volume         string    `json:"volume"`
	Issue          string    `json:"issue"`
	Page           string    `json:"page"`
	Issued         DateParts `json:"issued"`
}

// DateParts is CrossRef's nested date representation.
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the issued year, or 0 when absent.
func (d DateParts) Year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// PrimaryTitle returns the first title entry, or empty when absent.
func (w *Work) PrimaryTitle() string {
	if len(w.Title) == 0 {
		return ""
	}
	return w.Title[0]
}

// PrimaryContainerTitle returns the first container (journal) title entry,
// or empty when absent.
func (w *Work) PrimaryContainerTitle() string {
	if len(w.ContainerTitle) == 0 {
		return ""
	}
	return w.ContainerTitle[0]
}

// Journal is the subset of a CrossRef journal record used by the journal
// validity check.
type Journal struct {
	Title string `json:"title"`
}
