// Package mocknode is a fake P2P sync node for demos and manual testing.
//
// It serves GET /peers and GET /metadata in the node's wire format. Devices
// flip between online and offline every 20-60 seconds and files appear one by
// one every 15-30 seconds. Until the first file appears /metadata returns
// null, as a real node with nothing tracked does.
package mocknode

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Device is a peer in the node's wire format.
type Device struct {
	ID        string    `json:"id"`
	PublicKey string    `json:"public_key"`
	Name      string    `json:"name"`
	LastSeen  time.Time `json:"last_seen"`
	IP        string    `json:"ip"`
	Online    bool      `json:"online"`
	Type      string    `json:"type"`
}

// File is tracked file metadata in the node's wire format.
type File struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Chunks    []Chunk   `json:"chunks,omitempty"`
}

// Chunk is one piece of a file.
type Chunk struct {
	ID       string `json:"id"`
	FileID   string `json:"file_id"`
	Sequence int    `json:"sequence"`
	Hash     string `json:"hash"`
	Size     int64  `json:"size"`
}

type catalogEntry struct {
	path   string
	size   int64
	chunks int
}

// catalog is the order in which files show up. Zero chunks means the node
// has not split the file yet and omits the list.
var catalog = []catalogEntry{
	{"docs/report.pdf", 482113, 3},
	{"notes.txt", 812, 0},
	{"photos/2024/beach.jpg", 2301144, 5},
	{"music/track01.flac", 31457280, 8},
	{"projects/syncboard/main.go", 2048, 0},
}

type deviceState struct {
	device       Device
	nextChangeAt time.Time
}

// Node is the fake node. The zero value is not usable; call [New].
type Node struct {
	clock  clock.Clock
	logger *slog.Logger

	mu          sync.Mutex
	rand        *rand.Rand
	devices     []*deviceState
	files       []File
	nextFileAt  time.Time
	nextCatalog int
}

// New creates a node with four devices and no files. seed makes the
// presence flips reproducible.
func New(clk clock.Clock, logger *slog.Logger, seed uint64) *Node {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	n := &Node{
		clock:  clk,
		logger: logger,
		rand:   rand.New(rand.NewPCG(seed, seed)),
	}

	now := clk.Now()
	seedDevices := []Device{
		{ID: "dev-laptop", Name: "laptop", IP: "192.168.1.20", Online: true, Type: "agent"},
		{ID: "dev-desktop", Name: "desktop", IP: "192.168.1.21", Online: true, Type: "agent"},
		{ID: "dev-nas", Name: "nas", IP: "192.168.1.50", Online: false, Type: "agent"},
		{ID: "dev-gdrive", Name: "gdrive", IP: "", Online: true, Type: "gdrive"},
	}
	for _, d := range seedDevices {
		d.PublicKey = digest("key:" + d.ID)
		d.LastSeen = now.Add(-time.Duration(n.rand.IntN(300)) * time.Second).UTC()
		n.devices = append(n.devices, &deviceState{device: d, nextChangeAt: n.nextPresenceChange(now)})
	}
	n.nextFileAt = n.nextArrival(now)
	return n
}

// Handler returns the node's HTTP API.
func (n *Node) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /peers", n.handlePeers)
	mux.HandleFunc("GET /metadata", n.handleMetadata)
	return mux
}

func (n *Node) handlePeers(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	n.advance()
	devices := make([]Device, len(n.devices))
	for i, s := range n.devices {
		devices[i] = s.device
	}
	n.mu.Unlock()

	n.writeJSON(w, devices)
}

func (n *Node) handleMetadata(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	n.advance()
	// nil encodes as null, the node's answer when nothing is tracked
	var files []File
	if len(n.files) > 0 {
		files = make([]File, len(n.files))
		copy(files, n.files)
	}
	n.mu.Unlock()

	n.writeJSON(w, files)
}

func (n *Node) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		n.logger.Error("failed to write response", "error", err)
	}
}

// advance applies every presence change and file arrival that is due.
// Callers hold mu.
func (n *Node) advance() {
	now := n.clock.Now()

	for _, s := range n.devices {
		if s.device.Online {
			s.device.LastSeen = now.UTC()
		}
		if now.Before(s.nextChangeAt) {
			continue
		}
		s.device.Online = !s.device.Online
		s.nextChangeAt = n.nextPresenceChange(now)
		n.logger.Info("presence change", "device", s.device.Name, "online", s.device.Online)
	}

	for n.nextCatalog < len(catalog) && !now.Before(n.nextFileAt) {
		n.files = append(n.files, newFile(n.nextCatalog, catalog[n.nextCatalog], n.nextFileAt))
		n.logger.Info("file tracked", "path", catalog[n.nextCatalog].path)
		n.nextCatalog++
		n.nextFileAt = n.nextArrival(n.nextFileAt)
	}
}

// nextPresenceChange picks a time 20-60 seconds after now.
func (n *Node) nextPresenceChange(now time.Time) time.Time {
	return now.Add(time.Duration(20+n.rand.IntN(41)) * time.Second)
}

// nextArrival picks a time 15-30 seconds after t.
func (n *Node) nextArrival(t time.Time) time.Time {
	return t.Add(time.Duration(15+n.rand.IntN(16)) * time.Second)
}

func newFile(i int, e catalogEntry, at time.Time) File {
	id := fmt.Sprintf("file-%d", i+1)
	f := File{
		ID:        id,
		Path:      e.path,
		Size:      e.size,
		Hash:      digest(e.path),
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
	}
	for seq := 0; seq < e.chunks; seq++ {
		f.Chunks = append(f.Chunks, Chunk{
			ID:       fmt.Sprintf("%s-chunk-%d", id, seq),
			FileID:   id,
			Sequence: seq,
			Hash:     digest(fmt.Sprintf("%s#%d", e.path, seq)),
			Size:     e.size / int64(e.chunks),
		})
	}
	return f
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
