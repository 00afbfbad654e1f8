package server

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// renderMarkdown converts a turn's markdown content to HTML for display in
// the chat page. On conversion failure the raw text is dropped rather than
// served unescaped.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		log.Warn().Err(err).Msg("Markdown conversion failed")
		return ""
	}
	return buf.String()
}

func (s *Server) page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(chatPage)); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write page")
	}
}

// chatPage is the whole UI. The typing animation runs client-side; the
// server never delays a response for cosmetic effect.
const chatPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Multi-Doc RAG Chat</title>
<style>
.chat-container { max-width: 850px; margin: auto; padding-top: 10px; font-family: sans-serif; }
.chat-message { display: flex; gap: 12px; margin-bottom: 14px; align-items: flex-start; }
.chat-message.user { flex-direction: row-reverse; }
.chat-message .message { padding: 14px 18px; border-radius: 14px; max-width: 75%; font-size: 15px; line-height: 1.6; }
.chat-message.user .message { background-color: #2563eb; color: white; border-top-right-radius: 4px; }
.chat-message.bot .message { background-color: #f3f4f6; color: #111827; border-top-left-radius: 4px; }
.controls { margin: 16px 0; display: flex; gap: 8px; }
.controls input[type=text] { flex: 1; padding: 10px; }
.notice { font-size: 14px; color: #6b7280; margin: 8px 0; }
button { padding: 8px 14px; cursor: pointer; }
</style>
</head>
<body>
<div class="chat-container">
  <h1>&#128218; Multi-Doc RAG Chat</h1>
  <div class="controls">
    <input type="file" id="files" multiple accept=".pdf,.docx,.pptx,.xlsx,.ods,.txt,.md">
    <button id="process">Process</button>
    <a href="/api/v1/export"><button type="button">Download Chat (PDF)</button></a>
  </div>
  <div id="messages"></div>
  <div id="offer" style="display:none">
    <p class="notice"><b>This question is not available in the uploaded documents.</b>
    Would you like me to search the web and answer it?</p>
    <button id="acceptFallback">Yes, search web</button>
    <button id="declineFallback">No</button>
  </div>
  <div class="controls">
    <input type="text" id="question" placeholder="Ask a question about your documents">
    <button id="ask">Send</button>
  </div>
  <p class="notice" id="status"></p>
</div>
<script>
const messages = document.getElementById('messages');
const status = document.getElementById('status');
let pendingQuestion = null;

function bubble(role, html) {
  const wrap = document.createElement('div');
  wrap.className = 'chat-message ' + (role === 'user' ? 'user' : 'bot');
  const msg = document.createElement('div');
  msg.className = 'message';
  wrap.appendChild(msg);
  messages.appendChild(wrap);
  return msg;
}

function typeWriter(el, html, speed) {
  let i = 0;
  const text = html;
  const tick = () => {
    el.innerHTML = text.slice(0, ++i);
    if (i < text.length) setTimeout(tick, speed);
  };
  tick();
}

document.getElementById('process').onclick = async () => {
  const input = document.getElementById('files');
  if (!input.files.length) { status.textContent = 'Please upload at least one document'; return; }
  const form = new FormData();
  for (const f of input.files) form.append('files', f);
  status.textContent = 'Processing documents...';
  const res = await fetch('/api/v1/documents', { method: 'POST', body: form });
  const body = await res.json();
  status.textContent = res.ok ? body.message : body.error;
};

document.getElementById('ask').onclick = async () => {
  const input = document.getElementById('question');
  const question = input.value.trim();
  if (!question) return;
  input.value = '';
  bubble('user', '').textContent = question;
  const res = await fetch('/api/v1/chat', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ question })
  });
  const body = await res.json();
  if (!res.ok) { status.textContent = body.error; return; }
  if (body.warning) { status.textContent = body.warning; return; }
  if (body.fallback_offered) {
    pendingQuestion = body.question;
    document.getElementById('offer').style.display = 'block';
    return;
  }
  status.textContent = body.web ? 'Web mode: answered without document context' : '';
  typeWriter(bubble('assistant', ''), body.html || body.answer, 15);
};

document.getElementById('acceptFallback').onclick = async () => {
  document.getElementById('offer').style.display = 'none';
  const res = await fetch('/api/v1/chat/fallback', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ question: pendingQuestion, accept: true })
  });
  const body = await res.json();
  status.textContent = res.ok ? body.message : body.error;
};

document.getElementById('declineFallback').onclick = async () => {
  document.getElementById('offer').style.display = 'none';
  const res = await fetch('/api/v1/chat/fallback', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ accept: false })
  });
  const body = await res.json();
  status.textContent = res.ok ? body.message : body.error;
};
</script>
</body>
</html>
`
