package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sources of the changed file list in a workflow run
const (
	ChangedFilesAuto = "auto"
	ChangedFilesList = "list"
	ChangedFilesGit  = "git"
	ChangedFilesAPI  = "api"
)

// Changes holds where the changed file list of a pull request comes from
type Changes struct {
	// ChangedFiles is a file with newline-separated paths, or "-" for stdin
	ChangedFiles       string
	ChangedFilesSource string
	BaseRef            string
	HeadRef            string
}

// Flags returns CLI flags for the changed file source
func (c *Changes) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "changed-files",
			Usage:       "File listing changed paths, one per line (\"-\" for stdin)",
			Destination: &c.ChangedFiles,
			Sources:     cli.EnvVars("THEMEPREVIEW_CHANGED_FILES"),
		},
		&cli.StringFlag{
			Name:        "changed-files-source",
			Usage:       "Where changed files come from: auto, list, git or api",
			Value:       ChangedFilesAuto,
			Destination: &c.ChangedFilesSource,
			Sources:     cli.EnvVars("THEMEPREVIEW_CHANGED_FILES_SOURCE"),
			Validator: func(s string) error {
				switch s {
				case ChangedFilesAuto, ChangedFilesList, ChangedFilesGit, ChangedFilesAPI:
					return nil
				}
				return goerr.New("invalid changed files source", goerr.T(types.ErrTagInvalidConfig), goerr.V("source", s))
			},
		},
		&cli.StringFlag{
			Name:        "base-ref",
			Usage:       "Revision the head is compared with in git mode",
			Value:       "origin/trunk",
			Destination: &c.BaseRef,
			Sources:     cli.EnvVars("THEMEPREVIEW_BASE_REF"),
		},
		&cli.StringFlag{
			Name:        "head-ref",
			Usage:       "Revision of the pull request head in git mode",
			Value:       "HEAD",
			Destination: &c.HeadRef,
			Sources:     cli.EnvVars("THEMEPREVIEW_HEAD_REF"),
		},
	}
}

// Source resolves "auto" to a concrete source. Auto prefers an explicit list, then
// a git checkout holding both revisions, then the GitHub API.
func (c *Changes) Source(canDiff func() bool) string {
	switch {
	case c.ChangedFilesSource != "" && c.ChangedFilesSource != ChangedFilesAuto:
		return c.ChangedFilesSource
	case c.ChangedFiles != "":
		return ChangedFilesList
	case canDiff():
		return ChangedFilesGit
	default:
		return ChangedFilesAPI
	}
}
