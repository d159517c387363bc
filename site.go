package md2site

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/alnah/go-md2site/internal/feed"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// writeSiteFiles writes the posts listing and the feed when configured.
// Both list the published (written, non-draft) posts only.
func (r *buildRun) writeSiteFiles(report *Report) error {
	site := r.b.site
	if site.IndexTemplate == "" && !site.Feed {
		return nil
	}
	entries := r.entries()

	if site.IndexTemplate != "" {
		path, err := r.writeIndex(entries)
		if err != nil {
			return fmt.Errorf("posts listing: %w", err)
		}
		report.IndexPath = path
	}
	if site.Feed {
		path, err := r.writeFeed(entries)
		if err != nil {
			return fmt.Errorf("feed: %w", err)
		}
		report.FeedPath = path
	}
	return nil
}

func (r *buildRun) entries() []feed.Entry {
	var entries []feed.Entry
	for i, rec := range r.records {
		if rec == nil || rec.Draft || r.results[i].Status != StatusWritten {
			continue
		}
		entries = append(entries, feed.Entry{
			Slug:        r.docs[i].Name,
			Title:       rec.Title,
			Description: rec.Description,
			Author:      rec.Author,
			Tags:        rec.Tags,
			Date:        rec.Date,
		})
	}
	feed.Sort(entries)
	return entries
}

func (r *buildRun) writeIndex(entries []feed.Entry) (string, error) {
	site := r.b.site
	path := filepath.Join(r.outDir, IndexFileName)

	tmpl, err := r.b.loader.LoadTemplate(site.IndexTemplate)
	if err != nil {
		return "", err
	}
	values := map[string]string{
		"title":       site.Title,
		"description": site.Description,
		"author":      site.Author,
	}
	if site.URL != "" {
		values["canonical"] = feed.PageURL(site.URL, "")
	}
	page := pipeline.SubstituteMetadata(tmpl, pipeline.NewPlaceholders(values))
	if r.b.strict {
		if err := pipeline.CheckResolved(page); err != nil {
			return "", fmt.Errorf("template %s: %w", site.IndexTemplate, err)
		}
	}

	page, err = r.applyStylesheet(path, page, r.outDir)
	if err != nil {
		return "", err
	}

	list, err := feed.RenderList(entries, r.b.layout.Href, site.DateFormat)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(pipeline.SubstituteBody(page, list))); err != nil {
		return "", err
	}
	r.logger.Debug("posts listing written", slog.String("output", path), slog.Int("posts", len(entries)))
	return path, nil
}

func (r *buildRun) writeFeed(entries []feed.Entry) (string, error) {
	site := r.b.site
	path := filepath.Join(r.outDir, FeedFileName)

	xml, err := feed.RSS(feed.Site{
		Title:       site.Title,
		Description: site.Description,
		URL:         site.URL,
		Author:      site.Author,
	}, entries, r.b.layout.Href)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(xml)); err != nil {
		return "", err
	}
	r.logger.Debug("feed written", slog.String("output", path), slog.Int("items", len(entries)))
	return path, nil
}
