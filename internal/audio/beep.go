package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

const (
	sampleRate      = beep.SampleRate(44100)
	resampleQuality = 4
)

// BeepOptions configures the mp3 player.
type BeepOptions struct {
	// Dir is searched recursively for the files in CueFiles.
	Dir string
	// AmbientVolume is a linear gain in [0, 1] for the looping focus track.
	AmbientVolume float64
	Logger        logrus.FieldLogger
}

// ambientTrack is the looping focus track. The decoder stays open for the
// player's lifetime so it can be paused, resumed and rewound.
type ambientTrack struct {
	stream  beep.StreamSeekCloser
	ctrl    *beep.Ctrl
	started bool
}

// BeepPlayer plays mp3 cues through the system audio device.
type BeepPlayer struct {
	mu      sync.Mutex
	ambient *ambientTrack
	cues    map[timer.Cue]*beep.Buffer
	log     logrus.FieldLogger
}

var _ Player = (*BeepPlayer)(nil)

// NewBeepPlayer initialises the speaker and decodes every cue found under
// opts.Dir. Cues that are missing or fail to decode are logged and left
// unavailable; only a speaker failure is returned as an error.
func NewBeepPlayer(opts BeepOptions) (*BeepPlayer, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	paths, err := LocateCues(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("locate audio cues in %s: %w", opts.Dir, err)
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	p := &BeepPlayer{
		cues: make(map[timer.Cue]*beep.Buffer),
		log:  opts.Logger,
	}
	for cue, name := range CueFiles {
		path, ok := paths[cue]
		if !ok {
			p.log.WithField("cue", cue).Warnf("audio file %s not found under %s", name, opts.Dir)
			continue
		}
		if cue == timer.CueAmbientFocus {
			track, err := openAmbient(path, opts.AmbientVolume)
			if err != nil {
				p.log.WithField("cue", cue).Warnf("load ambient track: %v", err)
				continue
			}
			p.ambient = track
			continue
		}
		buf, err := loadBuffer(path)
		if err != nil {
			p.log.WithField("cue", cue).Warnf("load cue: %v", err)
			continue
		}
		p.cues[cue] = buf
	}
	return p, nil
}

func (p *BeepPlayer) Play(cue timer.Cue) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cue == timer.CueAmbientFocus {
		if p.ambient == nil {
			return fmt.Errorf("%s: %w", cue, ErrCueUnavailable)
		}
		speaker.Lock()
		p.ambient.ctrl.Paused = false
		speaker.Unlock()
		if !p.ambient.started {
			p.ambient.started = true
			speaker.Play(p.ambient.ctrl)
		}
		return nil
	}
	buf, ok := p.cues[cue]
	if !ok {
		return fmt.Errorf("%s: %w", cue, ErrCueUnavailable)
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
	return nil
}

func (p *BeepPlayer) Pause(cue timer.Cue) error {
	if cue != timer.CueAmbientFocus {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ambient == nil {
		return nil
	}
	speaker.Lock()
	p.ambient.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (p *BeepPlayer) Stop(cue timer.Cue) error {
	if cue != timer.CueAmbientFocus {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ambient == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	p.ambient.ctrl.Paused = true
	if err := p.ambient.stream.Seek(0); err != nil {
		return fmt.Errorf("rewind ambient track: %w", err)
	}
	return nil
}

// Close stops all playback and releases the ambient decoder.
func (p *BeepPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	speaker.Clear()
	if p.ambient == nil {
		return nil
	}
	err := p.ambient.stream.Close()
	p.ambient = nil
	return err
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	stream, format, err := mp3.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return stream, format, nil
}

// loadBuffer decodes a short cue fully into memory at the speaker rate.
func loadBuffer(path string) (*beep.Buffer, error) {
	stream, format, err := decode(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2})
	buf.Append(beep.Resample(resampleQuality, format.SampleRate, sampleRate, stream))
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf, nil
}

func openAmbient(path string, volume float64) (*ambientTrack, error) {
	stream, format, err := decode(path)
	if err != nil {
		return nil, err
	}
	looped, err := beep.Loop2(stream)
	if err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("loop %s: %w", path, err)
	}
	ctrl := &beep.Ctrl{
		Streamer: withVolume(beep.Resample(resampleQuality, format.SampleRate, sampleRate, looped), volume),
		Paused:   true,
	}
	return &ambientTrack{stream: stream, ctrl: ctrl}, nil
}

// withVolume applies a linear gain using the base-2 exponent effects.Volume expects.
func withVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain >= 1 {
		return s
	}
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}
