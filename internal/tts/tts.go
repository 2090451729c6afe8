package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Synthesizer converts cleaned text into an audio file at path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, path string) error
}

// googleTTSEndpoint is the free Translate speech endpoint. It accepts
// short text fragments only, so synthesis is chunked.
const googleTTSEndpoint = "https://translate.google.com/translate_tts"

const maxChunkRunes = 180

// GoogleSynthesizer fetches Arabic speech from the Google Translate TTS
// endpoint chunk by chunk and concatenates the MP3 frames.
type GoogleSynthesizer struct {
	HTTPClient *http.Client
	Endpoint   string
	Lang       string
}

// NewGoogleSynthesizer returns a synthesizer for Arabic narration.
func NewGoogleSynthesizer() *GoogleSynthesizer {
	return &GoogleSynthesizer{
		HTTPClient: http.DefaultClient,
		Endpoint:   googleTTSEndpoint,
		Lang:       "ar",
	}
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating audio file: %w", err)
	}
	defer f.Close()

	for _, chunk := range splitChunks(text, maxChunkRunes) {
		if err := g.fetchChunk(ctx, chunk, f); err != nil {
			os.Remove(path)
			return err
		}
	}
	return nil
}

func (g *GoogleSynthesizer) fetchChunk(ctx context.Context, chunk string, w io.Writer) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", g.Lang)
	q.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating tts request: %w", err)
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts endpoint returned %d", resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}
	return nil
}

// splitChunks breaks text into fragments of at most limit runes without
// splitting words.
func splitChunks(text string, limit int) []string {
	var chunks []string
	var b strings.Builder
	length := 0

	for _, word := range strings.Fields(text) {
		wl := len([]rune(word))
		if length > 0 && length+1+wl > limit {
			chunks = append(chunks, b.String())
			b.Reset()
			length = 0
		}
		if length > 0 {
			b.WriteByte(' ')
			length++
		}
		b.WriteString(word)
		length += wl
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// Narrator caches one generated audio file per story. Audio is assumed
// idempotent per distinct text, so the first synthesis wins.
type Narrator struct {
	synth Synthesizer
	dir   string

	mu    sync.Mutex
	files map[string]string // story id -> filename
}

// NewNarrator creates a Narrator writing files under dir.
func NewNarrator(synth Synthesizer, dir string) *Narrator {
	return &Narrator{synth: synth, dir: dir, files: make(map[string]string)}
}

// Dir returns the audio storage directory.
func (n *Narrator) Dir() string { return n.dir }

// AudioFor returns the cached audio filename for a story, synthesizing
// it on first request.
func (n *Narrator) AudioFor(ctx context.Context, storyID, text string) (string, error) {
	n.mu.Lock()
	if name, ok := n.files[storyID]; ok {
		n.mu.Unlock()
		return name, nil
	}
	n.mu.Unlock()

	if err := os.MkdirAll(n.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating audio dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.mp3", storyID, strings.ReplaceAll(uuid.New().String(), "-", ""))
	if err := n.synth.Synthesize(ctx, CleanText(text), filepath.Join(n.dir, name)); err != nil {
		return "", err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if existing, ok := n.files[storyID]; ok {
		// A concurrent request won the race; drop the duplicate file.
		os.Remove(filepath.Join(n.dir, name))
		return existing, nil
	}
	n.files[storyID] = name
	return name, nil
}

// URL builds the public audio URL. The playback speed travels as a query
// parameter for the player; the file itself is not resampled.
func URL(baseURL, filename string, speed float64) string {
	return fmt.Sprintf("%s/audio/%s?speed=%g", strings.TrimRight(baseURL, "/"), filename, speed)
}
