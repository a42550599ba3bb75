package tasks

import (
	"github.com/lysyi3m/medium-wxr/app/medium"
	"github.com/lysyi3m/medium-wxr/app/wxr"
)

// Pipeline holds the collaborators of one migration run. Ledger, Posts and
// Embeds are optional.
type Pipeline struct {
	Site         medium.Site
	Pages        medium.PageGetter
	Sources      medium.Sources
	Category     wxr.Category
	TemplateFile string
	OutFile      string
	Strict       bool
	Ledger       PostLedger
	Posts        PostRecorder
	Embeds       medium.EmbedRecorder
}

// Tasks returns the discovery, index, render and write tasks sharing run.
func (p Pipeline) Tasks(run *Run) []TaskInterface {
	embeds := medium.NewEmbedResolver(p.Site, p.Pages, p.Embeds)
	assembler := wxr.NewAssembler(p.Site, p.Category)

	return []TaskInterface{
		NewDiscoverPostsTask(p.Sources, medium.NewDiscovery(p.Site, p.Pages), run),
		NewBuildPermalinksTask(p.Site, p.Pages, run),
		NewRenderPostsTask(p.Site, p.Pages, embeds, assembler, p.Ledger, p.Posts, p.Strict, run),
		NewWriteFeedTask(p.TemplateFile, p.OutFile, wxr.NewGenerator(), run),
	}
}
