package main

// chatPageHTML is the minimal chat page served at /. It keeps one session
// per browser tab and renders the server-provided HTML for each answer.
const chatPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Student Constitution Assistant</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
  h1 { font-size: 1.3rem; }
  #log { border: 1px solid #ddd; border-radius: 6px; padding: 1rem; min-height: 280px; }
  .turn { margin-bottom: 1rem; }
  .who { font-weight: 600; font-size: 0.85rem; color: #555; }
  form { display: flex; gap: 0.5rem; margin-top: 1rem; }
  input[type=text] { flex: 1; padding: 0.5rem; }
  button { padding: 0.5rem 1rem; }
  .error { color: #b00020; }
</style>
</head>
<body>
<h1>Student Constitution Assistant</h1>
<div id="log"></div>
<form id="ask">
  <input type="text" id="question" placeholder="Ask about the constitution" autocomplete="off" required>
  <button type="submit">Send</button>
</form>
<script>
let sessionID = "";
const log = document.getElementById("log");

function addTurn(who, html, isError) {
  const div = document.createElement("div");
  div.className = "turn" + (isError ? " error" : "");
  const label = document.createElement("div");
  label.className = "who";
  label.textContent = who;
  const body = document.createElement("div");
  if (isError) {
    body.textContent = html;
  } else {
    body.innerHTML = html;
  }
  div.appendChild(label);
  div.appendChild(body);
  log.appendChild(div);
  log.scrollTop = log.scrollHeight;
}

document.getElementById("ask").addEventListener("submit", async (e) => {
  e.preventDefault();
  const input = document.getElementById("question");
  const question = input.value.trim();
  if (!question) return;
  input.value = "";
  addTurn("You", question, false);
  try {
    const resp = await fetch("/api/chat", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ session_id: sessionID, question: question }),
    });
    const data = await resp.json();
    if (!resp.ok) {
      addTurn("Assistant", data.error || "Request failed", true);
      return;
    }
    sessionID = data.session_id;
    addTurn("Assistant", data.answer_html || data.answer, false);
  } catch (err) {
    addTurn("Assistant", "Could not reach the server", true);
  }
});
</script>
</body>
</html>
`
