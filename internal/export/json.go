package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/operators"
)

type ExportData struct {
	*experiment.Result
	History   []operators.Snapshot   `json:"history"`
	Final     []experiment.Member    `json:"final"`
	Reference []core.ObjectiveVector `json:"reference,omitempty"`
}

// WriteJSON writes the whole result, including the fields the run store
// keeps out of metadata.
func WriteJSON(w io.Writer, res *experiment.Result) error {
	data := ExportData{
		Result:    res,
		History:   res.History,
		Final:     res.Final,
		Reference: res.Reference,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
