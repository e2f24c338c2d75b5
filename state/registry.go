// Package state keeps the open documents of the server: their text, their
// syntax trees and the snapshots readers query.
//
// Writers of one document are serialised by that document's lock; writers of
// different documents run in parallel. Readers never wait for a reparse: they
// get the last published snapshot.
package state

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/redexp/tjs-postfix-lsp/rope"
	. "github.com/redexp/tjs-postfix-lsp/types"
	"github.com/tliron/commonlog"
)

type parseFunc func(pool *ParserPool, text *rope.Rope, old *Tree) (*Tree, error)

type Registry struct {
	mu   sync.RWMutex
	docs map[Uri]*document

	langMu          sync.RWMutex
	languages       map[string]*Language
	defaultLanguage string

	poolMu   sync.Mutex
	pools    map[*Language]*ParserPool
	poolSize int

	log   commonlog.Logger
	parse parseFunc
}

type document struct {
	// edit serialises open, change and close
	edit sync.Mutex

	mu       sync.RWMutex
	snapshot *Snapshot
	closed   bool

	phase atomic.Uint32
}

type Option func(*Registry)

func WithLanguages(langs map[string]*Language) Option {
	return func(r *Registry) {
		r.languages = langs
	}
}

func WithDefaultLanguage(id string) Option {
	return func(r *Registry) {
		r.defaultLanguage = id
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

func WithPoolSize(size int) Option {
	return func(r *Registry) {
		r.poolSize = size
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		docs:            make(map[Uri]*document),
		languages:       DefaultLanguages(),
		defaultLanguage: DefaultLanguageID,
		pools:           make(map[*Language]*ParserPool),
		poolSize:        4,
		log:             commonlog.GetLogger("tjs-postfix.state"),
		parse:           (*ParserPool).Parse,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SetLanguages replaces the languageId table used by documents opened from
// now on.
func (r *Registry) SetLanguages(langs map[string]*Language, defaultID string) {
	r.langMu.Lock()
	defer r.langMu.Unlock()

	if langs != nil {
		r.languages = langs
	}

	if defaultID != "" {
		r.defaultLanguage = defaultID
	}
}

func (r *Registry) language(id string) *Language {
	r.langMu.RLock()
	defer r.langMu.RUnlock()

	if lang, ok := r.languages[id]; ok {
		return lang
	}

	if lang, ok := r.languages[r.defaultLanguage]; ok {
		return lang
	}

	return grammars[GrammarTSX]
}

func (r *Registry) pool(lang *Language) *ParserPool {
	r.poolMu.Lock()
	defer r.poolMu.Unlock()

	pool, ok := r.pools[lang]

	if !ok {
		pool = NewParserPool(lang, r.poolSize)
		r.pools[lang] = pool
	}

	return pool
}

func (r *Registry) lookup(uri Uri) *document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.docs[uri]
}

func (r *Registry) entry(uri Uri) *document {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[uri]

	if !ok {
		doc = &document{}
		r.docs[uri] = doc
	}

	return doc
}

// Open parses text and publishes it as the content of uri, replacing whatever
// was open under that uri. A parse failure still publishes the text.
func (r *Registry) Open(uri Uri, languageID string, version int32, text string) (err error) {
	lang := r.language(languageID)

	var doc *document

	for {
		doc = r.entry(uri)
		doc.edit.Lock()

		if !doc.closed {
			break
		}

		doc.edit.Unlock()
	}

	defer doc.edit.Unlock()
	defer r.recoverBatch(uri, doc, &err)

	content := rope.New(text)

	doc.setPhase(PhaseReparsing)

	tree, err := r.parse(r.pool(lang), content, nil)

	if err != nil {
		r.log.Errorf("%s: initial parse: %s", uri, err)
		err = nil
	}

	doc.publish(newSnapshot(uri, version, languageID, lang, content, tree))

	r.log.Infof("%s: opened, %s, version %d, %d bytes", uri, languageID, version, content.Len())

	return
}

// Change applies one didChange batch. Changes are applied in order, each
// against the text left by the previous one, and the tree is reparsed once.
func (r *Registry) Change(uri Uri, version int32, changes []Change) (err error) {
	doc := r.lookup(uri)

	if doc == nil {
		return fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}

	doc.edit.Lock()
	defer doc.edit.Unlock()

	if doc.closed {
		return fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}

	defer r.recoverBatch(uri, doc, &err)

	doc.publish(r.sync(doc, doc.current(), version, changes))

	return
}

// Close forgets uri. Snapshots already handed out stay readable until they
// are released.
func (r *Registry) Close(uri Uri) error {
	doc := r.lookup(uri)

	if doc == nil {
		return fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}

	doc.edit.Lock()
	defer doc.edit.Unlock()

	if doc.closed {
		return fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}

	r.evict(uri, doc)

	r.log.Infof("%s: closed", uri)

	return nil
}

// Snapshot returns the current snapshot of uri. The caller must Release it.
func (r *Registry) Snapshot(uri Uri) (*Snapshot, error) {
	doc := r.lookup(uri)

	if doc == nil {
		return nil, fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}

	doc.mu.RLock()
	defer doc.mu.RUnlock()

	if doc.snapshot == nil {
		return nil, fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}

	return doc.snapshot.acquire(), nil
}

func (r *Registry) Phase(uri Uri) Phase {
	doc := r.lookup(uri)

	if doc == nil {
		return PhaseNoTree
	}

	return Phase(doc.phase.Load())
}

func (r *Registry) Uris() []Uri {
	r.mu.RLock()
	list := make([]Uri, 0, len(r.docs))

	for uri := range r.docs {
		list = append(list, uri)
	}

	r.mu.RUnlock()

	slices.Sort(list)

	return list
}

// Shutdown closes every document and frees the parsers.
func (r *Registry) Shutdown() {
	for _, uri := range r.Uris() {
		_ = r.Close(uri)
	}

	r.poolMu.Lock()
	defer r.poolMu.Unlock()

	for lang, pool := range r.pools {
		pool.Close()
		delete(r.pools, lang)
	}
}

// evict removes doc. The caller holds doc.edit.
func (r *Registry) evict(uri Uri, doc *document) {
	r.mu.Lock()

	if r.docs[uri] == doc {
		delete(r.docs, uri)
	}

	r.mu.Unlock()

	doc.mu.Lock()
	snap := doc.snapshot
	doc.snapshot = nil
	doc.closed = true
	doc.mu.Unlock()

	doc.setPhase(PhaseNoTree)

	if snap != nil {
		snap.Release()
	}
}

// recoverBatch turns a panic inside a batch into an evicted document: its
// state can no longer be trusted, the next open starts over.
func (r *Registry) recoverBatch(uri Uri, doc *document, err *error) {
	rec := recover()

	if rec == nil {
		return
	}

	r.log.Errorf("%s: %v, document dropped", uri, rec)

	r.evict(uri, doc)

	*err = fmt.Errorf("%s: %w after panic: %v", uri, ErrUnknownDocument, rec)
}

func (doc *document) current() *Snapshot {
	doc.mu.RLock()
	defer doc.mu.RUnlock()

	return doc.snapshot
}

// publish swaps in snap and drops the registry's reference to the previous
// snapshot.
func (doc *document) publish(snap *Snapshot) {
	doc.mu.Lock()
	prev := doc.snapshot
	doc.snapshot = snap
	doc.mu.Unlock()

	doc.setPhase(snap.phase())

	if prev != nil {
		prev.Release()
	}
}

func (doc *document) setPhase(p Phase) {
	doc.phase.Store(uint32(p))
}
