package compose

import (
	"fmt"

	"github.com/nhle/issuebox/internal/model"
)

// serviceDomain is the domain used for all synthesized noreply addresses.
const serviceDomain = "noreply.github.com"

// wikiAddress is the fixed sender of wiki messages; wiki pages carry no
// per-page author in the source data.
var wikiAddress = model.Address{Email: "wiki@" + serviceDomain}

// authorAddress synthesizes the sender address for an author handle.
// The handle is required; an invented sender would corrupt the archive.
func authorAddress(object, handle string) (model.Address, error) {
	if handle == "" {
		return model.Address{}, &MissingFieldError{Object: object, Field: "author"}
	}
	return model.Address{
		Name:  handle,
		Email: handle + "@" + serviceDomain,
	}, nil
}

// repositoryAddress synthesizes the single recipient address shared by
// every message of a repository's archive.
func repositoryAddress(repo model.Repository) (model.Address, error) {
	if repo.FullName == "" {
		return model.Address{}, &MissingFieldError{Object: "repository", Field: "full name"}
	}
	if repo.Name == "" {
		return model.Address{}, &MissingFieldError{Object: "repository", Field: "name"}
	}
	return model.Address{
		Name:  repo.FullName,
		Email: repo.Name + "@" + serviceDomain,
	}, nil
}

// subject returns the decorated root subject for an issue. Replies use
// the same subject with a "Re: " prefix. Decoration appends each label
// name in order, then a [CLOSED] marker for closed issues.
func (b *Builder) subject(issue model.Issue) string {
	s := issue.Title
	if !b.decorateLabels {
		return s
	}
	for _, label := range issue.Labels {
		s += fmt.Sprintf(" [%s]", label.Name)
	}
	if issue.Closed {
		s += " [CLOSED]"
	}
	return s
}
