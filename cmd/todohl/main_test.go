package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

const sampleGo = "package main\n// TODO: write tests\nfunc f() {} // FIXME later\n"

type testApp struct {
	*app
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, files map[string]string, stdin string, environ ...string) *testApp {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, filepath.Join("/work", name), []byte(content), 0o644); err != nil {
			t.Fatalf("テストファイルの作成に失敗しました: %v", err)
		}
	}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testApp{
		app: &app{
			in:      strings.NewReader(stdin),
			out:     stdout,
			errOut:  stderr,
			fs:      fs,
			environ: environ,
			cwd:     "/work",
			home:    "/home/tester",
		},
		stdout: stdout,
		stderr: stderr,
	}
}

func (ta *testApp) execute(ctx context.Context, args ...string) error {
	root := newRootCommand(ta.app)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

type scanJSON struct {
	File   string `json:"file"`
	Total  int    `json:"total"`
	Counts []struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	} `json:"counts"`
}

func TestScanはJSONでカテゴリ別件数を出力する(t *testing.T) {
	ta := newTestApp(t, map[string]string{"main.go": sampleGo}, "")
	if err := ta.execute(context.Background(), "scan", "-o", "json", "main.go"); err != nil {
		t.Fatalf("scan が失敗しました: %v", err)
	}
	var got scanJSON
	if err := json.Unmarshal(ta.stdout.Bytes(), &got); err != nil {
		t.Fatalf("JSON の解析に失敗しました: %v\n%s", err, ta.stdout.String())
	}
	if got.File != "main.go" || got.Total != 2 {
		t.Fatalf("file=%q total=%d, want main.go 2", got.File, got.Total)
	}
	want := map[string]int{"TODO": 1, "FIXME": 1, "HACK": 0}
	for _, c := range got.Counts {
		if want[c.Category] != c.Count {
			t.Fatalf("%s の件数 = %d, want %d", c.Category, c.Count, want[c.Category])
		}
	}
}

func TestScanは標準入力を読む(t *testing.T) {
	ta := newTestApp(t, nil, "x := 1 // HACK: temporary\n")
	if err := ta.execute(context.Background(), "scan", "--output", "ndjson"); err != nil {
		t.Fatalf("scan が失敗しました: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(ta.stdout.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("1 行を期待しました: %q", ta.stdout.String())
	}
	var row struct {
		Category string `json:"category"`
		File     string `json:"file"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &row); err != nil {
		t.Fatalf("NDJSON の解析に失敗しました: %v", err)
	}
	if row.Category != "HACK" || row.File != stdinID || row.Text != "// HACK: temporary" {
		t.Fatalf("予期しない行: %+v", row)
	}
}

func TestScanは存在しないファイルでエラーになる(t *testing.T) {
	ta := newTestApp(t, nil, "")
	err := ta.execute(context.Background(), "scan", "missing.go")
	if err == nil || !strings.Contains(err.Error(), "missing.go") {
		t.Fatalf("missing.go を含むエラーを期待しました: %v", err)
	}
}

func TestScanの出力形式は設定ファイル_環境変数_フラグの順に上書きされる(t *testing.T) {
	files := map[string]string{
		"main.go":      sampleGo,
		".todohl.yaml": "ui:\n  output: csv\n  fields: category,line\n",
	}

	ta := newTestApp(t, files, "")
	if err := ta.execute(context.Background(), "scan", "main.go"); err != nil {
		t.Fatalf("scan が失敗しました: %v", err)
	}
	if got := ta.stdout.String(); got != "CATEGORY,LINE\r\nTODO,2\r\nFIXME,3\r\n" {
		t.Fatalf("設定ファイルの CSV が使われていません: %q", got)
	}

	ta = newTestApp(t, files, "", "TODOHL_OUTPUT=tsv")
	if err := ta.execute(context.Background(), "scan", "main.go"); err != nil {
		t.Fatalf("scan が失敗しました: %v", err)
	}
	if got := ta.stdout.String(); got != "CATEGORY\tLINE\nTODO\t2\nFIXME\t3\n" {
		t.Fatalf("環境変数の TSV が使われていません: %q", got)
	}

	ta = newTestApp(t, files, "", "TODOHL_OUTPUT=tsv")
	if err := ta.execute(context.Background(), "scan", "--output", "ndjson", "--fields", "text", "main.go"); err != nil {
		t.Fatalf("scan が失敗しました: %v", err)
	}
	if !strings.HasPrefix(ta.stdout.String(), `{"category":"TODO"`) {
		t.Fatalf("フラグの NDJSON が使われていません: %q", ta.stdout.String())
	}
}

func TestConfigフラグは明示的なファイルを読む(t *testing.T) {
	files := map[string]string{
		"main.go":     sampleGo,
		"alt.toml":    "[ui]\noutput = \"md\"\n",
		".todohl.yml": "ui:\n  output: csv\n",
	}
	ta := newTestApp(t, files, "")
	if err := ta.execute(context.Background(), "--config", "alt.toml", "scan", "main.go"); err != nil {
		t.Fatalf("scan が失敗しました: %v", err)
	}
	if !strings.HasPrefix(ta.stdout.String(), "| CATEGORY |") {
		t.Fatalf("Markdown を期待しました: %q", ta.stdout.String())
	}
}

func Test不正な設定はすべて報告される(t *testing.T) {
	ta := newTestApp(t, map[string]string{"main.go": sampleGo}, "", "TODOHL_COLOR=sometimes")
	err := ta.execute(context.Background(), "scan", "--tab-width", "0", "main.go")
	if err == nil {
		t.Fatalf("エラーを期待しました")
	}
	for _, want := range []string{"tab_width", "sometimes"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("エラーに %q が含まれていません: %v", want, err)
		}
	}
}

func TestScanのANSI出力は色なしで行番号を付ける(t *testing.T) {
	ta := newTestApp(t, map[string]string{"main.go": sampleGo}, "")
	if err := ta.execute(context.Background(), "--color", "never", "scan", "-o", "ansi", "main.go"); err != nil {
		t.Fatalf("scan が失敗しました: %v", err)
	}
	if !strings.Contains(ta.stdout.String(), "2 | // TODO: write tests") {
		t.Fatalf("行番号付きの本文がありません: %q", ta.stdout.String())
	}
	if strings.Contains(ta.stdout.String(), "\x1b[") {
		t.Fatalf("エスケープシーケンスが含まれています: %q", ta.stdout.String())
	}
}

func TestWatchは標準入力のコマンドで表示を切り替える(t *testing.T) {
	files := map[string]string{
		"a.go": "// TODO a\n",
		"b.go": "// FIXME b\n// HACK c\n",
	}
	ta := newTestApp(t, files, "next\nhello\nrefresh\nbogus\nquit\n")
	if err := ta.execute(context.Background(), "watch", "a.go", "b.go"); err != nil {
		t.Fatalf("watch が失敗しました: %v", err)
	}
	out := ta.stdout.String()
	for _, want := range []string{
		"/work/a.go  TODO 1  FIXME 0  HACK 0",
		"/work/b.go  TODO 0  FIXME 1  HACK 1",
		"TODO Highlighter is running!",
		`unknown command "bogus"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("出力に %q が含まれていません:\n%s", want, out)
		}
	}
}

func TestWatchはファイル引数を必要とする(t *testing.T) {
	ta := newTestApp(t, nil, "")
	if err := ta.execute(context.Background(), "watch"); err == nil {
		t.Fatalf("引数なしでエラーを期待しました")
	}
}

func TestServeはハイライトをHTTPで返す(t *testing.T) {
	ta := newTestApp(t, map[string]string{"main.go": sampleGo}, "")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var opened string
	ta.openURL = func(url string) error {
		opened = url
		return nil
	}
	var body []byte
	var fetchErr error
	ta.served = func(url string) {
		defer cancel()
		resp, err := http.Get(url + "api/highlights")
		if err != nil {
			fetchErr = err
			return
		}
		defer resp.Body.Close()
		body, fetchErr = io.ReadAll(resp.Body)
	}

	if err := ta.execute(ctx, "serve", "--addr", "127.0.0.1:0", "--open", "main.go"); err != nil {
		t.Fatalf("serve が失敗しました: %v", err)
	}
	if fetchErr != nil {
		t.Fatalf("取得に失敗しました: %v", fetchErr)
	}
	var snap struct {
		View   string         `json:"view"`
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("JSON の解析に失敗しました: %v\n%s", err, body)
	}
	if snap.View != "/work/main.go" || snap.Counts["TODO"] != 1 || snap.Counts["FIXME"] != 1 {
		t.Fatalf("予期しないスナップショット: %+v", snap)
	}
	if !strings.HasPrefix(opened, "http://127.0.0.1:") {
		t.Fatalf("ブラウザが開かれていません: %q", opened)
	}
}

func TestNvimのマニフェストにコマンドとautocmdが含まれる(t *testing.T) {
	ta := newTestApp(t, nil, "")
	if err := ta.execute(context.Background(), "nvim", "--manifest", "todohl"); err != nil {
		t.Fatalf("nvim --manifest が失敗しました: %v", err)
	}
	out := ta.stdout.String()
	for _, want := range []string{"todohl", "TodoHighlighterHello", "BufEnter", "TextChangedI", "VimLeavePre"} {
		if !strings.Contains(out, want) {
			t.Fatalf("マニフェストに %q が含まれていません:\n%s", want, out)
		}
	}
}

func TestVersionはバージョンを出力する(t *testing.T) {
	ta := newTestApp(t, nil, "")
	if err := ta.execute(context.Background(), "version"); err != nil {
		t.Fatalf("version が失敗しました: %v", err)
	}
	if !strings.HasPrefix(ta.stdout.String(), "todohl ") {
		t.Fatalf("予期しない出力: %q", ta.stdout.String())
	}
}
