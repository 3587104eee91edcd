// Package monitoring exposes memory spaces over HTTP so that they can be
// inspected and driven while a program runs.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/memspace/idgen"
	"github.com/sarchlab/memspace/memspace"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"
)

// ErrUnknownSpace is returned by Do for a name that was never registered.
var ErrUnknownSpace = errors.New("monitoring: unknown space")

// guardedSpace serializes every call into a space. The engine itself is not
// safe for concurrent use.
type guardedSpace struct {
	sync.Mutex
	space *memspace.Space
}

// Monitor turns a program into a server that can inspect memory spaces.
type Monitor struct {
	portNumber      int
	profileDuration time.Duration
	idGen           idgen.IDGenerator
	logger          *zap.Logger

	spacesLock sync.RWMutex
	spaces     map[string]*guardedSpace

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		profileDuration: time.Second,
		idGen:           idgen.NewXID(),
		logger:          zap.NewNop(),
		spaces:          make(map[string]*guardedSpace),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(
			os.Stderr,
			"Port number %d is reserved, using a random port instead.\n",
			portNumber,
		)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithProfileDuration sets how long the profile endpoint samples the CPU.
func (m *Monitor) WithProfileDuration(d time.Duration) *Monitor {
	m.profileDuration = d
	return m
}

// WithLogger sets the logger that reports requests that change a space.
func (m *Monitor) WithLogger(logger *zap.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterSpace makes a memory space visible to the monitor. Once
// registered, the space must only be used through Do.
func (m *Monitor) RegisterSpace(s *memspace.Space) {
	m.spacesLock.Lock()
	defer m.spacesLock.Unlock()

	if _, exists := m.spaces[s.Name()]; exists {
		panic(fmt.Sprintf("space %s already registered", s.Name()))
	}

	m.spaces[s.Name()] = &guardedSpace{space: s}
}

// SpaceNames returns the names of the registered spaces in sorted order.
func (m *Monitor) SpaceNames() []string {
	m.spacesLock.RLock()
	defer m.spacesLock.RUnlock()

	names := make([]string, 0, len(m.spaces))
	for name := range m.spaces {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Do runs fn with exclusive access to the named space.
func (m *Monitor) Do(name string, fn func(s *memspace.Space) error) error {
	m.spacesLock.RLock()
	g, ok := m.spaces[name]
	m.spacesLock.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSpace, name)
	}

	g.Lock()
	defer g.Unlock()

	return fn(g.space)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGen.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the progress listing.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitor API.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/spaces", m.listSpaces).Methods(http.MethodGet)
	r.HandleFunc("/api/space/{name}", m.spaceDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/space/{name}/malloc/{length}", m.malloc).
		Methods(http.MethodPost)
	r.HandleFunc("/api/space/{name}/free/{address}", m.free).
		Methods(http.MethodPost)
	r.HandleFunc("/api/space/{name}/defrag", m.defrag).
		Methods(http.MethodPost)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring memory spaces with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return url
}

// Shutdown stops a server started by StartServer.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) listSpaces(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.SpaceNames())
}

func (m *Monitor) spaceDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var state memspace.State

	err := m.Do(name, func(s *memspace.Space) error {
		state = s.State()
		return nil
	})
	if m.writeError(w, err) {
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, state)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&state)
	serializer.SetMaxDepth(2)
	err = serializer.Serialize(w)

	dieOnErr(err)
}

type addressRsp struct {
	Address int `json:"address"`
}

func (m *Monitor) malloc(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	length, err := strconv.Atoi(vars["length"])
	if err != nil {
		http.Error(w, "bad length: "+vars["length"], http.StatusBadRequest)
		return
	}

	var addr int

	err = m.Do(vars["name"], func(s *memspace.Space) error {
		var err error
		addr, err = s.Malloc(length)

		return err
	})
	if m.writeError(w, err) {
		return
	}

	m.logger.Debug("malloc over http",
		zap.String("space", vars["name"]),
		zap.Int("length", length),
		zap.Int("address", addr))

	writeJSON(w, addressRsp{Address: addr})
}

func (m *Monitor) free(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	addr, err := strconv.Atoi(vars["address"])
	if err != nil {
		http.Error(w, "bad address: "+vars["address"], http.StatusBadRequest)
		return
	}

	err = m.Do(vars["name"], func(s *memspace.Space) error {
		return s.Free(addr)
	})
	if m.writeError(w, err) {
		return
	}

	m.logger.Debug("free over http",
		zap.String("space", vars["name"]),
		zap.Int("address", addr))

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) defrag(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	err := m.Do(name, func(s *memspace.Space) error {
		s.Defrag()
		return nil
	})
	if m.writeError(w, err) {
		return
	}

	w.WriteHeader(http.StatusOK)
}

// writeError reports err to the client and returns true if there was one.
func (m *Monitor) writeError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}

	status := http.StatusBadRequest
	if errors.Is(err, ErrUnknownSpace) {
		status = http.StatusNotFound
	}

	m.logger.Info("request failed", zap.Error(err))
	http.Error(w, err.Error(), status)

	return true
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	snapshots := make([]ProgressSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		snapshots = append(snapshots, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, snapshots)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
