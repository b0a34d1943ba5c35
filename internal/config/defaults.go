package config

const (
	defaultInboxDir          = "~/.local/share/chorus/inbox"
	defaultLibraryDir        = "~/Music/library"
	defaultPlaylistDir       = "~/Music/playlists"
	defaultLogDir            = "~/.local/share/chorus/logs"
	defaultFilenameMaxLen    = 100
	defaultDownloaderBinary  = "spotdl"
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 5
	defaultTimeoutSeconds    = 900
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:    defaultInboxDir,
			LibraryDir:  defaultLibraryDir,
			PlaylistDir: defaultPlaylistDir,
			LogDir:      defaultLogDir,
		},
		Ingest: Ingest{
			KeepInboxFiles: false,
			FilenameMaxLen: defaultFilenameMaxLen,
		},
		Downloader: Downloader{
			Binary:            defaultDownloaderBinary,
			MaxRetries:        defaultMaxRetries,
			RetryDelaySeconds: defaultRetryDelaySeconds,
			TimeoutSeconds:    defaultTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
