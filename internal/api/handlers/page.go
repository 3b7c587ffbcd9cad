package handlers

import (
	"html/template"
	"net/http"

	"github.com/cloo-solutions/lunchpick/internal/api"
	"github.com/cloo-solutions/lunchpick/internal/domain"
)

// PageHandler serves the single-page search form.
type PageHandler struct {
	kakaoMap bool
}

// NewPageHandler creates a PageHandler. kakaoMap selects the interactive map
// frame over the static image.
func NewPageHandler(kakaoMap bool) *PageHandler {
	return &PageHandler{kakaoMap: kakaoMap}
}

type indexData struct {
	KakaoMap       bool
	LocationFailed string
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{
		KakaoMap:       h.kakaoMap,
		LocationFailed: domain.NoticeFor(domain.ErrLocationDenied).Message,
	}
	if err := indexPage.Execute(w, data); err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to render page")
	}
}

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>lunchpick</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; height: 100vh; }
#side { width: 360px; padding: 12px; overflow-y: auto; box-sizing: border-box; }
#map { flex: 1; border: 0; }
img#map { object-fit: contain; background: #f2efe9; }
fieldset { margin-bottom: 10px; }
li { cursor: pointer; margin: 4px 0; }
.place small { color: #666; display: block; }
</style>
</head>
<body>
<div id="side">
  <fieldset>
    <legend>Address</legend>
    <form id="search"><input name="query" placeholder="address or place"> <button>Search</button></form>
    <button id="locate" type="button">Use my location</button>
    <ul id="candidates"></ul>
  </fieldset>
  <fieldset>
    <legend>Radius (m)</legend>
    <form id="radius"><input name="radius" type="number" min="1" max="20000"> <button>Apply</button></form>
  </fieldset>
  <fieldset>
    <legend>Recommend</legend>
    <form id="recommend">
      <input name="include" placeholder="include"><br>
      <input name="exclude" placeholder="exclude (comma separated)"><br>
      <input name="count" type="number" min="0" placeholder="count (blank = all)">
      <button>Pick</button>
    </form>
  </fieldset>
  <ul id="restaurants"></ul>
</div>
{{if .KakaoMap}}<iframe id="map" src="/map"></iframe>{{else}}<img id="map" src="/map.png" alt="map">{{end}}
<script>
async function call(method, path, body) {
  const res = await fetch(path, {
    method: method,
    headers: {"Content-Type": "application/json"},
    body: body === undefined ? undefined : JSON.stringify(body)
  });
  const payload = await res.json();
  if (payload.notice) { alert(payload.notice.message); }
  refreshMap();
  return res.ok ? payload.data : null;
}

function refreshMap() {
  const map = document.getElementById("map");
  const base = map.tagName === "IFRAME" ? "/map" : "/map.png";
  setTimeout(function () { map.src = base + "?t=" + Date.now(); }, 150);
}

function renderPlaces(id, places, onClick) {
  const list = document.getElementById(id);
  list.innerHTML = "";
  places.forEach(function (p, i) {
    const li = document.createElement("li");
    li.className = "place";
    li.textContent = onClick ? p.display : p.name;
    if (!onClick) {
      const meta = document.createElement("small");
      meta.textContent = [p.category_label, p.full_address, p.phone].filter(Boolean).join(" / ");
      li.appendChild(meta);
    } else {
      li.onclick = function () { onClick(i); };
    }
    list.appendChild(li);
  });
}

async function loadState() {
  const state = await call("GET", "/api/state");
  if (!state) { return; }
  document.querySelector("#search [name=query]").value = state.query;
  document.querySelector("#radius [name=radius]").value = state.radius_meters;
  renderPlaces("candidates", state.candidates, select);
  renderPlaces("restaurants", state.restaurants);
}

async function select(index) {
  const data = await call("POST", "/api/candidates/" + index + "/select");
  if (data) { await loadState(); }
}

document.getElementById("search").onsubmit = async function (e) {
  e.preventDefault();
  const data = await call("POST", "/api/search", {query: e.target.query.value});
  if (data) { renderPlaces("candidates", data.places, select); }
};

document.getElementById("radius").onsubmit = async function (e) {
  e.preventDefault();
  await call("PUT", "/api/radius", {radius_meters: Number(e.target.radius.value)});
};

document.getElementById("recommend").onsubmit = async function (e) {
  e.preventDefault();
  const count = e.target.count.value;
  const data = await call("POST", "/api/recommend", {
    include: e.target.include.value,
    exclude: e.target.exclude.value,
    count: count === "" ? null : Number(count)
  });
  if (data) { renderPlaces("restaurants", data.places); }
};

document.getElementById("locate").onclick = function () {
  const done = async function (body) {
    const data = await call("POST", "/api/locate", body);
    if (data) { await loadState(); }
  };
  // Without browser geolocation the daemon's own locator is asked; it
  // answers location_unsupported when none is configured.
  if (!navigator.geolocation) { done({}); return; }
  navigator.geolocation.getCurrentPosition(
    function (pos) { done({lat: pos.coords.latitude, lon: pos.coords.longitude}); },
    function () { alert({{.LocationFailed}}); }
  );
};

loadState();
</script>
</body>
</html>
`))
