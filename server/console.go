package server

// Minimal built-in console: three slice views with sliders, polling the API
// for fresh frames.  Stands in when no separate web client is deployed.
const consolePage = `<!DOCTYPE html>
<html>
<head><title>voxview</title>
<style>
body { font-family: sans-serif; background: #f8fafc; text-align: center; }
.views { display: flex; justify-content: center; gap: 16px; margin-top: 16px; }
.view { background: #f1f5f9; padding: 8px; border-radius: 4px; box-shadow: 0 1px 2px #0002; }
.view img { width: 400px; height: 400px; object-fit: contain; background: #000; }
.view .label { font-family: monospace; font-size: 12px; color: #475569; }
</style>
</head>
<body>
<h3>voxview</h3>
<div>Volume: <select id="group"></select></div>
<div class="views">
<div class="view"><b>XY</b><br><img id="img0"><br>
<input id="sl0" type="range" min="0" value="0"><div class="label" id="lb0"></div></div>
<div class="view"><b>XZ</b><br><img id="img1"><br>
<input id="sl1" type="range" min="0" value="0"><div class="label" id="lb1"></div></div>
<div class="view"><b>YZ</b><br><img id="img2"><br>
<input id="sl2" type="range" min="0" value="0"><div class="label" id="lb2"></div></div>
</div>
<script>
const planes = ["xy", "xz", "yz"];
const seqs = [-1, -1, -1];
async function refreshInfo() {
  const info = await (await fetch("/api/info")).json();
  const sel = document.getElementById("group");
  if (sel.options.length != info.groups.length) {
    sel.innerHTML = "";
    for (const g of info.groups) sel.add(new Option(g, g, false, g == info.group));
  }
  sel.value = info.group;
  for (let a = 0; a < 3; a++) {
    const sl = document.getElementById("sl" + a);
    sl.max = info.axes[a].max_index;
    if (document.activeElement !== sl) sl.value = info.axes[a].index;
    document.getElementById("lb" + a).textContent =
      "Slice: " + String(info.axes[a].index).padStart(3, "0") + " / " +
      (info.axes[a].max_index + 1) + "  level " + info.axes[a].rendered_level;
  }
}
async function pollFrames() {
  for (let a = 0; a < 3; a++) {
    const resp = await fetch("/api/slice/" + planes[a], {method: "HEAD"});
    const seq = Number(resp.headers.get("X-Frame-Seq"));
    if (resp.ok && seq != seqs[a]) {
      seqs[a] = seq;
      document.getElementById("img" + a).src = "/api/slice/" + planes[a] + "?seq=" + seq;
    }
  }
}
for (let a = 0; a < 3; a++) {
  document.getElementById("sl" + a).oninput = (e) =>
    fetch("/api/axis/" + a + "/index?value=" + e.target.value, {method: "POST"});
}
document.getElementById("group").onchange = (e) =>
  fetch("/api/group?name=" + encodeURIComponent(e.target.value), {method: "POST"});
setInterval(refreshInfo, 250);
setInterval(pollFrames, 100);
refreshInfo();
</script>
</body>
</html>
`
