package templates

// ScanReportHTML renders one scan. It expects a handlers.scanReportData value.
const ScanReportHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>NetTrust Scan Report {{.Scan.ID}}</title>
    <style>
        :root {
            --text-primary: #111827;
            --text-secondary: #6b7280;
            --accent: #2563eb;
            --danger: #ef4444;
            --danger-bg: #fef2f2;
            --warning: #f59e0b;
            --success: #10b981;
            --success-bg: #ecfdf5;
            --border: #e5e7eb;
        }

        body {
            font-family: 'Inter', -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: #f3f4f6;
            color: var(--text-primary);
            margin: 0;
            padding: 40px;
        }

        .container {
            max-width: 1100px;
            margin: 0 auto;
            background: #fff;
            border-radius: 12px;
            overflow: hidden;
        }

        header {
            background: #1e293b;
            color: #fff;
            padding: 32px 40px;
            border-bottom: 4px solid var(--accent);
        }

        header h1 { margin: 0; font-size: 26px; }
        header p { margin: 6px 0 0; color: #cbd5e1; font-size: 13px; }

        .section { padding: 28px 40px; border-bottom: 1px solid var(--border); }
        .section h2 { margin-top: 0; font-size: 18px; }

        .verdict { padding: 16px; border-radius: 8px; font-weight: 600; }
        .verdict.alert { color: var(--danger); background: var(--danger-bg); }
        .verdict.clear { color: var(--success); background: var(--success-bg); }

        .stats { display: grid; grid-template-columns: repeat(4, 1fr); gap: 16px; }
        .stat-card { border: 1px solid var(--border); border-radius: 8px; padding: 16px; text-align: center; }
        .stat-value { display: block; font-size: 26px; font-weight: 700; }
        .stat-label { color: var(--text-secondary); font-size: 12px; text-transform: uppercase; }

        table { width: 100%; border-collapse: collapse; font-size: 13px; }
        th { text-align: left; color: var(--text-secondary); border-bottom: 2px solid var(--border); padding: 8px; }
        td { border-bottom: 1px solid var(--border); padding: 8px; vertical-align: top; }
        td.mono { font-family: monospace; }
        ul.reasons { margin: 4px 0 0; padding-left: 18px; color: var(--text-secondary); }

        .badge { padding: 2px 8px; border-radius: 4px; font-size: 11px; font-weight: 700; color: #fff; }
        .badge.SAFE { background: var(--success); }
        .badge.LOW { background: #3b82f6; }
        .badge.MEDIUM { background: var(--warning); }
        .badge.HIGH { background: #ea580c; }
        .badge.CRITICAL { background: var(--danger); }

        footer { text-align: center; color: var(--text-secondary); font-size: 12px; padding: 20px; }
    </style>
</head>
<body>
<div class="container">
    <header>
        <h1>Wireless Trust Report</h1>
        <p>Scan {{.Scan.ID}} | {{.Scan.StartedAt.Format "2006-01-02 15:04:05 MST"}}{{if .ModelVersion}} | Model {{.ModelVersion}}{{end}}</p>
    </header>

    <div class="section">
        {{if gt .Scan.Summary.Threats 0}}
        <div class="verdict alert">{{.Scan.Summary.Threats}} suspicious access point(s) detected. Do not connect to the networks flagged below.</div>
        {{else}}
        <div class="verdict clear">No threats detected in this scan.</div>
        {{end}}
    </div>

    <div class="section">
        <div class="stats">
            <div class="stat-card"><span class="stat-value">{{.Scan.Summary.Total}}</span><span class="stat-label">Networks</span></div>
            <div class="stat-card"><span class="stat-value">{{.Scan.Summary.Threats}}</span><span class="stat-label">Threats</span></div>
            <div class="stat-card"><span class="stat-value">{{.Scan.Summary.RogueAPs}}</span><span class="stat-label">Rogue APs</span></div>
            <div class="stat-card"><span class="stat-value">{{.Scan.Summary.Critical}}</span><span class="stat-label">Critical</span></div>
        </div>
    </div>

    <div class="section">
        <h2>Networks</h2>
        <table>
            <thead>
                <tr>
                    <th>Level</th>
                    <th>Network</th>
                    <th>BSSID</th>
                    <th>Verdict</th>
                    <th>Signal</th>
                    <th>Channel</th>
                </tr>
            </thead>
            <tbody>
                {{range .Results}}
                <tr>
                    <td><span class="badge {{.ThreatLevel}}">{{.ThreatLevel}}</span></td>
                    <td>
                        <strong>{{.NetworkName}}</strong>{{if .IsBaseline}} (trusted){{end}}
                        {{if .Reasons}}<ul class="reasons">{{range .Reasons}}<li>{{.}}</li>{{end}}</ul>{{end}}
                    </td>
                    <td class="mono">{{.BSSID}}</td>
                    <td>{{.AttackType}} {{printf "%.0f%%" (percent .Confidence)}}<br><small>{{.RecommendedAction}}</small></td>
                    <td>{{.SignalStrength}} dBm</td>
                    <td>{{.Channel}}</td>
                </tr>
                {{else}}
                <tr><td colspan="6">No networks in this scan.</td></tr>
                {{end}}
            </tbody>
        </table>
    </div>

    {{if .Learned}}
    <div class="section">
        <h2>Trusted Networks</h2>
        <table>
            <thead><tr><th>Network</th><th>BSSID</th></tr></thead>
            <tbody>
                {{range .Learned}}
                <tr><td>{{.SSID}}</td><td class="mono">{{.Address}}</td></tr>
                {{end}}
            </tbody>
        </table>
    </div>
    {{end}}

    <footer>Generated by NetTrust | {{.GeneratedAt.Format "2006-01-02 15:04"}}</footer>
</div>
</body>
</html>
`
