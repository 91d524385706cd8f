package compose

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nhle/issuebox/internal/identity"
	"github.com/nhle/issuebox/internal/model"
	"github.com/nhle/issuebox/internal/progress"
)

// markupSuffix is the page file suffix recognized during the wiki walk.
const markupSuffix = ".md"

// wikiHomePage is the page name GitHub shows as the wiki entry page.
// When present it becomes the thread root regardless of walk position.
const wikiHomePage = "Home"

// WikiThread builds one thread from a cloned wiki tree rooted at dir.
// Pages are gathered in deterministic walk order (lexical per directory);
// the Home page, if any, becomes the root and every other page replies to
// it. Each inspected path is reported to sink. Wiki pages carry no
// tracked timestamp, so the archival time is used as the message date.
func (b *Builder) WikiThread(repo model.Repository, dir string, sink progress.Sink) (model.Thread, error) {
	pages, err := collectPages(dir, sink)
	if err != nil {
		return model.Thread{}, err
	}
	if len(pages) == 0 {
		return model.Thread{}, nil
	}
	orderPages(pages)

	to, err := repositoryAddress(repo)
	if err != nil {
		return model.Thread{}, err
	}
	rootID, err := identity.WikiRootID(repo.FullName)
	if err != nil {
		return model.Thread{}, err
	}

	date := b.now()
	messages := make([]model.Message, 0, len(pages))
	for i, page := range pages {
		id := rootID
		if i > 0 {
			id, err = identity.WikiPageID(repo.Name, page.Path)
			if err != nil {
				return model.Thread{}, err
			}
		}

		msg := model.Message{
			Subject:   "[WIKI] " + page.Name,
			From:      wikiAddress,
			To:        to,
			Date:      date,
			MessageID: id,
			Body:      b.renderBody(id, page.Body),
		}
		if i > 0 {
			msg.InReplyTo = rootID
			msg.References = rootID
		}
		messages = append(messages, msg)
	}

	return model.Thread{Messages: messages}, nil
}

// collectPages walks the cloned tree and reads every markdown page, in
// walk order. Paths are stored relative to dir with forward slashes so
// page identifiers do not depend on the ephemeral clone location.
func collectPages(dir string, sink progress.Sink) ([]model.WikiPage, error) {
	var pages []model.WikiPage

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		sink.Logf("inspecting %s", path)
		if !strings.HasSuffix(d.Name(), markupSuffix) {
			return nil
		}

		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading wiki page %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("relativizing wiki page path %s: %w", path, err)
		}

		pages = append(pages, model.WikiPage{
			Name: strings.TrimSuffix(d.Name(), markupSuffix),
			Path: filepath.ToSlash(rel),
			Body: string(body),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking wiki tree %s: %w", dir, err)
	}

	return pages, nil
}

// orderPages moves the Home page to the front so it roots the thread.
// The rest keep their walk order.
func orderPages(pages []model.WikiPage) {
	for i, page := range pages {
		if page.Name == wikiHomePage {
			home := pages[i]
			copy(pages[1:i+1], pages[:i])
			pages[0] = home
			return
		}
	}
}
