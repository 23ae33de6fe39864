package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lanshare/internal/netx"
	"lanshare/internal/server"
	"lanshare/internal/store"
)

const consoleHelp = `commands:
  list                 show shared files and texts
  status               server state, address, counters
  add <path>           share a local file or folder
  text <content>       share a text snippet
  del <id-prefix>      remove a file entry
  deltext <id-prefix>  remove a text entry
  clear files|texts    drop one list entirely
  start | stop         control the server
  quit                 stop and exit`

// runConsole reads management commands from stdin until quit or EOF.
// It stands in for the desktop panel's buttons.
func runConsole(st *store.Store, srv *server.Server, quit chan struct{}) {
	defer close(quit)

	fmt.Println(consoleHelp)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "":
		case "help":
			fmt.Println(consoleHelp)
		case "list":
			printCatalog(st)
		case "status":
			printStatus(srv)
		case "add":
			addLocal(st, arg)
		case "text":
			if arg == "" {
				fmt.Println("text content must not be empty")
				continue
			}
			st.AddText(store.Text{Content: arg, Uploader: netx.LocalIP()})
			fmt.Println("text added")
		case "del":
			removeByPrefix(arg, st.Files(), func(id string) bool { return st.RemoveFile(id) })
		case "deltext":
			removeTextByPrefix(st, arg)
		case "clear":
			switch arg {
			case "files":
				fmt.Printf("removed %d file entries\n", st.ClearFiles())
			case "texts":
				fmt.Printf("removed %d texts\n", st.ClearTexts())
			default:
				fmt.Println("usage: clear files|texts")
			}
		case "start":
			if err := srv.Start(); err != nil {
				fmt.Printf("start failed: %v\n", err)
			}
		case "stop":
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := srv.Stop(ctx); err != nil {
				fmt.Printf("stop failed: %v\n", err)
			}
			cancel()
		case "quit":
			return
		default:
			fmt.Printf("unknown command %q (try help)\n", cmd)
		}
	}
}

func printCatalog(st *store.Store) {
	files := st.Files()
	texts := st.Texts()
	if len(files) == 0 && len(texts) == 0 {
		fmt.Println("nothing shared")
		return
	}
	for _, e := range files {
		marker := "file"
		if e.Kind == store.KindFolder {
			marker = "dir "
		}
		fmt.Printf("  %s %s  %s (%s, uploader %s)\n", shortID(e.ID), marker, e.Name, e.Path, e.Uploader)
	}
	for i, t := range texts {
		fmt.Printf("  %s text [%d] %s (uploader %s)\n", shortID(t.ID), i, truncate(t.Content, 40), t.Uploader)
	}
}

func printStatus(srv *server.Server) {
	fmt.Printf("state=%s addr=%s\n", srv.State(), srv.Addr())
	m := srv.Metrics()
	fmt.Printf("requests=%d (4xx=%d 5xx=%d) uploads=%d/%dB texts=%d downloads=%d/%dB\n",
		m.RequestsTotal, m.RequestErrors4xx, m.RequestErrors5xx,
		m.UploadsTotal, m.UploadBytesTotal, m.TextUploadsTotal,
		m.DownloadsTotal, m.DownloadBytesTotal)
}

func addLocal(st *store.Store, path string) {
	if path == "" {
		fmt.Println("usage: add <path>")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Printf("bad path: %v\n", err)
		return
	}
	fi, err := os.Stat(abs)
	if err != nil {
		fmt.Printf("cannot share %s: %v\n", abs, err)
		return
	}

	entry := store.Entry{
		Name:     filepath.Base(abs),
		Path:     abs,
		Uploader: netx.LocalIP(),
	}
	if fi.IsDir() {
		entry.Kind = store.KindFolder
	} else {
		entry.Kind = store.KindFile
		entry.Size = fi.Size()
	}
	e := st.AddFile(entry)
	fmt.Printf("shared %s as %s (%s)\n", abs, e.Name, shortID(e.ID))
}

func removeByPrefix(prefix string, files []store.Entry, remove func(string) bool) {
	if prefix == "" {
		fmt.Println("usage: del <id-prefix>")
		return
	}
	for _, e := range files {
		if strings.HasPrefix(e.ID, prefix) {
			if remove(e.ID) {
				fmt.Printf("removed %s\n", e.Name)
			}
			return
		}
	}
	fmt.Printf("no entry matches %q\n", prefix)
}

func removeTextByPrefix(st *store.Store, prefix string) {
	if prefix == "" {
		fmt.Println("usage: deltext <id-prefix>")
		return
	}
	for _, t := range st.Texts() {
		if strings.HasPrefix(t.ID, prefix) {
			if st.RemoveText(t.ID) {
				fmt.Printf("removed %s\n", truncate(t.Content, 40))
			}
			return
		}
	}
	fmt.Printf("no text matches %q\n", prefix)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
