package fetch

import (
	"github.com/odysseus0/aidigest/internal/config"
	"github.com/odysseus0/aidigest/internal/model"
)

type Config = config.Config
type Entry = model.Entry
type FeedSource = model.FeedSource
