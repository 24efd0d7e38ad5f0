package cli

import "github.com/odysseus0/aidigest/internal/model"

type OutputFormat = model.OutputFormat
type FeedSource = model.FeedSource
type RunReport = model.RunReport

const (
	OutputTable = model.OutputTable
	OutputJSON  = model.OutputJSON
)
