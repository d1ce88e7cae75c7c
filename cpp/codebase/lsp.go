package codebase

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/csense/config"
	"github.com/dhamidi/csense/cpp/filedb"
)

const lsName = "csense"

type LSPServer struct {
	cfg      *config.Config
	files    *filedb.FileDB
	codebase *Codebase
	watcher  *Watcher
	handler  protocol.Handler
	server   *server.Server
	version  string
}

func NewLSPServer(version string, cfg *config.Config) *LSPServer {
	ls := &LSPServer{
		cfg:     cfg,
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(string(*params.RootURI)); err == nil {
			rootDir = path
		}
	}

	ls.files = filedb.New(rootDir)
	ls.codebase = New(ls.files, ls.cfg)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", ">"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	watcher, err := NewWatcher(ls.codebase, ls.cfg, ls.files.RootDir())
	if err != nil {
		log.Errorf("file watcher unavailable: %s", err.Error())
		return nil
	}
	ls.watcher = watcher
	ls.watcher.Start()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.files.SetOverlay(path, []byte(params.TextDocument.Text))
	if err := ls.codebase.OnOpen(path); err != nil {
		log.Errorf("open %s: %s", path, err.Error())
	}
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.files.SetOverlay(path, []byte(textChange.Text))
			if err := ls.codebase.OnEdit(path); err != nil {
				log.Errorf("edit %s: %s", path, err.Error())
			}
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.files.RemoveOverlay(path)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.files.SetOverlay(path, []byte(*params.Text))
	} else {
		ls.files.RemoveOverlay(path)
	}
	if err := ls.codebase.OnEdit(path); err != nil {
		log.Errorf("save %s: %s", path, err.Error())
	}
	return nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	// LSP characters count text left of the cursor, which is exactly the
	// engine's column contract; character 0 means nothing typed yet.
	line := int(params.Position.Line) + 1
	column := int(params.Position.Character)
	if column == 0 {
		return nil, nil
	}

	entries, err := ls.codebase.GetSuggestions(path, line, column)
	if err != nil {
		log.Debugf("completion %s:%d:%d: %s", path, line, column, err.Error())
		return nil, nil
	}
	if len(entries) == 0 {
		return nil, nil
	}

	items := make([]protocol.CompletionItem, 0, len(entries))
	for _, entry := range entries {
		kind := toProtocolKind(entry.Kind)
		insertText := entry.Text
		items = append(items, protocol.CompletionItem{
			Label:      entry.Text,
			Kind:       &kind,
			InsertText: &insertText,
		})
	}
	return items, nil
}

func toProtocolKind(kind EntryKind) protocol.CompletionItemKind {
	switch kind {
	case EntryProperty:
		return protocol.CompletionItemKindField
	case EntryIdentifier:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
