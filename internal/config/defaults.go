package config

const (
	defaultOutputDir         = "~/.local/share/shotsync/processed"
	defaultLogDir            = "~/.local/share/shotsync/logs"
	defaultStateDir          = "~/.local/share/shotsync/state"
	defaultKitsuTaskType     = "From EVEREST"
	defaultKitsuTaskStatus   = "Done"
	defaultKitsuComment      = "Auto-published preview."
	defaultKitsuTimeout      = 60
	defaultShotColumn        = "SHOT"
	defaultFrameInColumn     = "FRAME IN"
	defaultFrameOutColumn    = "FRAME OUT"
	defaultDurationColumn    = "FRAME DURATION"
	defaultFPSColumn         = "FPS"
	defaultDescriptionColumn = "Clip Name"
	defaultSequence          = "SQ01"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultVideoCodec        = "libx264"
	defaultPixelFormat       = "yuv420p"
	defaultCRF               = 18
	defaultExtension         = "mp4"
	defaultWorkers           = 2
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Kitsu: Kitsu{
			TaskType:       defaultKitsuTaskType,
			TaskStatus:     defaultKitsuTaskStatus,
			Comment:        defaultKitsuComment,
			TimeoutSeconds: defaultKitsuTimeout,
		},
		Breakdown: Breakdown{
			ShotColumn:        defaultShotColumn,
			FrameInColumn:     defaultFrameInColumn,
			FrameOutColumn:    defaultFrameOutColumn,
			DurationColumn:    defaultDurationColumn,
			FPSColumn:         defaultFPSColumn,
			DescriptionColumn: defaultDescriptionColumn,
			Sequence:          defaultSequence,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			PixelFormat:   defaultPixelFormat,
			CRF:           defaultCRF,
			Extension:     defaultExtension,
			Workers:       defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
