package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/media"
)

// MediaCommands converts attachments between stickers and plain images.
type MediaCommands struct {
	transport  Transport
	httpClient *http.Client
}

func NewMediaCommands(transport Transport) *MediaCommands {
	return &MediaCommands{
		transport:  transport,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (m *MediaCommands) Name() string { return "media" }

func (m *MediaCommands) Handle(c *Context) Outcome {
	switch c.Command {
	case "sticker":
		return m.convert(c, "sticker.png", media.Sticker)
	case "toimg":
		return m.convert(c, "image.png", media.ToImage)
	}
	return NotMatched
}

func (m *MediaCommands) convert(c *Context, filename string, fn func(io.Reader) ([]byte, error)) Outcome {
	if len(c.Event.Attachments) == 0 {
		c.Fail("Please send or reply to an image.")
		return Handled
	}

	data, err := m.download(c.Ctx(), c.Event.Attachments[0].URL)
	if err != nil {
		log.Error().Err(err).Str("url", c.Event.Attachments[0].URL).Msg("failed to download attachment")
		c.Fail("Error downloading the image. Please try again.")
		return Failed
	}

	out, err := fn(bytes.NewReader(data))
	if err != nil {
		log.Error().Err(err).Str("command", c.Command).Msg("media conversion failed")
		c.Fail("That attachment does not look like a supported image.")
		return Handled
	}

	if err := m.transport.SendFile(c.Ctx(), c.Event.ChannelID, filename, bytes.NewReader(out)); err != nil {
		log.Error().Err(err).Str("channel", c.Event.ChannelID).Msg("failed to send converted file")
		c.Fail("Error sending the converted file. Please try again.")
		return Failed
	}
	c.React("✅")
	return Handled
}

func (m *MediaCommands) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment fetch returned status %d", resp.StatusCode)
	}
	// Attachments are capped well below this, the limit is a guard.
	return io.ReadAll(io.LimitReader(resp.Body, 25<<20))
}
