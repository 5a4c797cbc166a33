package gitsync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"
)

// ContentsPusher uploads the tracked ledger files through the contents
// API. It is the Push path for deployments that run from a plain
// directory instead of a git checkout.
type ContentsPusher struct {
	client *ContentsClient
	files  []string
	now    func() time.Time
}

func NewContentsPusher(client *ContentsClient, files []string) *ContentsPusher {
	if len(files) == 0 {
		files = DefaultFiles
	}
	return &ContentsPusher{client: client, files: files, now: time.Now}
}

// Push uploads every tracked file whose local content differs from the
// remote. Returns true when at least one file was written.
func (p *ContentsPusher) Push(ctx context.Context) (bool, error) {
	message := fmt.Sprintf("Update job state - %s", p.now().UTC().Format("2006-01-02 15:04 UTC"))

	changed := false
	for _, path := range p.files {
		local, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return changed, fmt.Errorf("read %s: %w", path, err)
		}

		wrote := false
		err = p.client.Update(ctx, path, message, func(remote []byte) ([]byte, error) {
			wrote = !bytes.Equal(remote, local)
			return local, nil
		})
		if err != nil {
			return changed, err
		}
		if wrote {
			changed = true
		}
	}
	return changed, nil
}
