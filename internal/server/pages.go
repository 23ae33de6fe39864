package server

import "html/template"

// Presentation templates for the two HTML pages the server renders. Kept
// deliberately plain: the catalog is a utility page for whoever scanned
// the QR code, not a product surface.

type catalogFile struct {
	Name     string
	Href     string
	IsFolder bool
	Uploader string
}

type catalogText struct {
	Index    int
	Preview  string
	Uploader string
}

type catalogData struct {
	Files []catalogFile
	Texts []catalogText
}

type listingItem struct {
	Name  string
	Href  string
	IsDir bool
}

type listingData struct {
	DirName string
	Parent  string
	Items   []listingItem
}

var catalogTmpl = template.Must(template.New("catalog").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>LAN Share</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #f5f5f7; color: #333; margin: 0; padding: 20px; }
.container { max-width: 900px; margin: 0 auto; }
.list { background: #fff; border-radius: 12px; box-shadow: 0 2px 10px rgba(0,0,0,.1); overflow: hidden; }
.item { display: flex; justify-content: space-between; align-items: center; padding: 14px 16px; border-bottom: 1px solid #eee; }
.item:last-child { border-bottom: none; }
.meta { color: #666; font-size: .85rem; }
.btn { background: #007aff; color: #fff; border: none; padding: 9px 16px; border-radius: 8px; cursor: pointer; text-decoration: none; }
form.upload { margin: 16px 0; display: flex; gap: 10px; flex-wrap: wrap; }
textarea { width: 100%; padding: 10px; border: 1px solid #d1d1d6; border-radius: 8px; }
</style>
</head>
<body>
<div class="container">
<h1>&#128193; LAN Share</h1>

<form class="upload" method="post" action="/upload/file" enctype="multipart/form-data">
<input type="file" name="file" required>
<input class="btn" type="submit" value="Upload file">
</form>

<form class="upload" id="textForm">
<textarea name="text" rows="3" placeholder="Text to share..." required></textarea>
<input class="btn" type="submit" value="Upload text">
</form>

<div class="list">
{{range .Files}}<div class="item">
<div><a href="{{.Href}}">{{if .IsFolder}}&#128193;{{else}}&#128196;{{end}} {{.Name}}</a>
<div class="meta">uploader: {{.Uploader}}</div></div>
{{if not .IsFolder}}<a class="btn" href="{{.Href}}" download>Download</a>{{end}}
</div>
{{end}}{{range .Texts}}<div class="item">
<div><a href="/text/{{.Index}}">&#128221; {{.Preview}}</a>
<div class="meta">uploader: {{.Uploader}}</div></div>
<a class="btn" href="/text/{{.Index}}">Open</a>
</div>
{{end}}</div>
</div>
<script>
document.getElementById('textForm').addEventListener('submit', function (ev) {
  ev.preventDefault();
  var text = this.elements['text'].value;
  fetch('/upload/text', {
    method: 'POST',
    headers: {'Content-Type': 'application/json; charset=utf-8'},
    body: JSON.stringify({text: text})
  }).then(function (resp) {
    if (resp.ok) { location.reload(); } else { resp.text().then(alert); }
  });
});
</script>
</body>
</html>
`))

var listingTmpl = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Directory: {{.DirName}}</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #f5f5f7; color: #333; margin: 0; padding: 20px; }
.container { max-width: 900px; margin: 0 auto; }
.list { background: #fff; border-radius: 12px; box-shadow: 0 2px 10px rgba(0,0,0,.1); overflow: hidden; }
.item { display: flex; justify-content: space-between; align-items: center; padding: 14px 16px; border-bottom: 1px solid #eee; }
.item:last-child { border-bottom: none; }
.btn { background: #007aff; color: #fff; border: none; padding: 9px 16px; border-radius: 8px; cursor: pointer; text-decoration: none; }
a.back { display: inline-block; margin-bottom: 14px; color: #007aff; text-decoration: none; }
</style>
</head>
<body>
<div class="container">
<a class="back" href="{{.Parent}}">&#8592; Back</a>
<h1>&#128193; {{.DirName}}</h1>
<div class="list">
{{range .Items}}<div class="item">
{{if .IsDir}}<a href="{{.Href}}">&#128193; {{.Name}}/</a><span></span>
{{else}}<span>&#128196; {{.Name}}</span><a class="btn" href="{{.Href}}" download>Download</a>{{end}}
</div>
{{end}}</div>
</div>
</body>
</html>
`))
