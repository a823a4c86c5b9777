package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# histodash configuration
version: "1.0"

api:
  # Prediction endpoint: receives a multipart POST with the image under "file".
  predict_url: "http://127.0.0.1:8000"
  # Metrics endpoint: GET returning a classification report.
  # Leave empty to run without the analytics panel.
  metrics_url: ""
  # 0 means no explicit timeout.
  timeout: 0s
  user_agent: "histodash"

splash:
  enabled: true
  images:
    - "./images/melons.jpg"
    - "./images/trafficlight.jpg"
  visible_duration: 1500ms
  fade_duration: 350ms
  caption: "Have you checked yours?"

output:
  default_format: "text"   # text|json|markdown|csv
  color_mode: "auto"       # auto|always|never
  verbose: false
  no_emoji: false

log:
  # Used while the terminal UI is running.
  file: "~/.cache/histodash/histodash.log"
  max_size_mb: 10
  max_backups: 3
  max_age_days: 28
  compress: false

charts:
  export_dir: "./charts"
  width: 800
  height: 480
`
}

// MinimalSampleConfig returns a configuration with only the endpoints
func MinimalSampleConfig() string {
	return `version: "1.0"
api:
  predict_url: "http://127.0.0.1:8000"
  metrics_url: ""
`
}
