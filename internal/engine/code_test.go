package engine

import "testing"

func TestLocalEditBroadcastsWholeSnapshot(t *testing.T) {
	rec := &recorder{}
	e := NewCodeEngine("python", rec)

	e.SetText("print('hi')", OriginLocal)

	envs := rec.byType(KindCodeChange)
	if len(envs) != 1 {
		t.Fatalf("got %d code-change envelopes, want 1", len(envs))
	}
	if envs[0].Code != "print('hi')" || envs[0].Language != "python" {
		t.Errorf("snapshot payload %+v, want full text+language", envs[0])
	}
}

func TestRemoteSnapshotAppliesAtomicallyWithoutEcho(t *testing.T) {
	rec := &recorder{}
	e := NewCodeEngine("python", rec)

	var gotOrigin Origin
	notified := 0
	e.OnChange = func(text, language string, origin Origin) {
		notified++
		gotOrigin = origin
	}

	e.ApplySnapshot("const x = 1", "javascript")

	if rec.count() != 0 {
		t.Errorf("remote snapshot re-broadcast %d envelopes", rec.count())
	}
	if text, lang := e.Snapshot(); text != "const x = 1" || lang != "javascript" {
		t.Errorf("document = (%q, %q), want atomic replace", text, lang)
	}
	if notified != 1 || gotOrigin != OriginRemote {
		t.Errorf("notified=%d origin=%v, want one remote-attributed notification", notified, gotOrigin)
	}

	// The very next local edit must be attributed local again.
	e.SetText("const x = 2", OriginLocal)
	if gotOrigin != OriginLocal {
		t.Error("local edit after remote apply still attributed remote")
	}
	if got := len(rec.byType(KindCodeChange)); got != 1 {
		t.Errorf("local edit after remote apply broadcast %d envelopes, want 1", got)
	}
}

func TestLanguageChangeArrivesAlone(t *testing.T) {
	rec := &recorder{}
	e := NewCodeEngine("python", rec)
	e.SetText("x = 1", OriginLocal)

	e.SetLanguage("go", OriginLocal)
	envs := rec.byType(KindLanguageChange)
	if len(envs) != 1 {
		t.Fatalf("got %d language-change envelopes, want 1", len(envs))
	}
	if envs[0].Language != "go" || envs[0].Code != "" {
		t.Errorf("language-change payload %+v, want language only", envs[0])
	}

	// Inbound language switch with no text snapshot keeps the text.
	e.SetLanguage("rust", OriginRemote)
	if text, lang := e.Snapshot(); text != "x = 1" || lang != "rust" {
		t.Errorf("document = (%q, %q) after lone language change", text, lang)
	}
}

func TestRemoteSnapshotWithoutLanguageKeepsCurrent(t *testing.T) {
	e := NewCodeEngine("python", &recorder{})
	e.ApplySnapshot("x = 1", "")
	if _, lang := e.Snapshot(); lang != "python" {
		t.Errorf("language = %q, want current kept", lang)
	}
}

func TestResetFlowsThroughOrdinaryBroadcastPath(t *testing.T) {
	rec := &recorder{}
	e := NewCodeEngine("python", rec)
	e.SetText("broken", OriginLocal)

	e.Reset("def solve():\n    pass\n")

	envs := rec.byType(KindCodeChange)
	if len(envs) != 2 {
		t.Fatalf("got %d code-change envelopes, want 2", len(envs))
	}
	if envs[1].Code != "def solve():\n    pass\n" {
		t.Errorf("reset payload %q", envs[1].Code)
	}
}
