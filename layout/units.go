package layout

// PtToMm 将字号(pt)换算为毫米；渲染器以毫米为单位排版，字体系统使用 pt。
const PtToMm = 0.352777
