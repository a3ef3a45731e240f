// Command maildump dumps the plain-text bodies of messages under the target
// label to files. It is used to collect notification samples for extractor
// unit tests. It never deletes or modifies messages.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/imalan123/personal-llm-agent/pkg/client"
	"github.com/imalan123/personal-llm-agent/pkg/config"
	"github.com/imalan123/personal-llm-agent/pkg/extract"
	"github.com/imalan123/personal-llm-agent/pkg/logging"
	gmailreader "github.com/imalan123/personal-llm-agent/pkg/reader/gmail"
)

const dumpDir = "testdata/dump"

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if cfg.TargetLabel == "" {
		logger.Error("TARGET_LABEL environment variable is required")
		os.Exit(1)
	}

	// Read-only scope is enough here.
	httpClient, err := client.New(cfg.CredentialsFile, cfg.TokenFile, gmail.GmailReadonlyScope)
	if err != nil {
		logger.Error("creating http client", "error", err)
		os.Exit(1)
	}

	mailbox, err := gmailreader.NewGoogleMailbox(httpClient)
	if err != nil {
		logger.Error("creating mailbox", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	session := gmailreader.NewSession(mailbox, cfg.TargetLabel, logger)

	labelID, err := session.ResolveLabel(ctx)
	if err != nil {
		logger.Error("resolving label", "error", err)
		os.Exit(1)
	}

	// Empty query: dump everything under the label, not just today's.
	ids, err := mailbox.ListMessageIDs(ctx, labelID, "")
	if err != nil {
		logger.Error("listing messages", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(dumpDir, 0o755); err != nil {
		logger.Error("creating dump directory", "error", err)
		os.Exit(1)
	}

	dumped := 0
	for _, id := range ids {
		msg, err := mailbox.GetMessage(ctx, id)
		if err != nil {
			logger.Warn("failed to fetch message", "message_id", id, "error", err)
			continue
		}

		text := extract.PlainText(msg)
		if text == "" {
			logger.Warn("message has no text/html body", "message_id", id)
			continue
		}

		filename := sanitizeFilename(fmt.Sprintf("%s_%s.txt", cfg.TargetLabel, id))
		path := filepath.Join(dumpDir, filename)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			logger.Warn("failed to write dump file", "file", path, "error", err)
			continue
		}

		logger.Info("dumped message", "file", path)
		dumped++
	}

	logger.Info("mail dump complete", "total", dumped, "directory", dumpDir)
}

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\s]+`)

func sanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}
