// Package replay 加载 YAML 报文语料并逐条解码比对，用于回归测试与 espctl replay
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
)

// 期望错误类别
const (
	ErrorMalformed    = "malformed"
	ErrorShortPayload = "short_payload"
)

// Corpus 一组报文用例
type Corpus struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// FrameSpec 由字段构造帧（校验和按发送方自动追加）
type FrameSpec struct {
	Origin      byte   `yaml:"origin"`
	Destination byte   `yaml:"destination"`
	Type        byte   `yaml:"type"`
	Data        string `yaml:"data"`
}

// Case 单条用例：Hex 与 Frame 二选一
type Case struct {
	Name   string     `yaml:"name"`
	Hex    string     `yaml:"hex,omitempty"`
	Frame  *FrameSpec `yaml:"frame,omitempty"`
	Expect Expect     `yaml:"expect"`
}

// Expect 期望结果；Value 为 JSON 字段子集
type Expect struct {
	Kind  string         `yaml:"kind,omitempty"`
	Error string         `yaml:"error,omitempty"`
	Value map[string]any `yaml:"value,omitempty"`
}

// Load 读取语料文件
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode 从 YAML 流解析语料
func Decode(r io.Reader) (*Corpus, error) {
	var c Corpus
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("replay: parse corpus: %w", err)
	}
	for i, tc := range c.Cases {
		if (tc.Hex == "") == (tc.Frame == nil) {
			return nil, fmt.Errorf("replay: case %d (%s): exactly one of hex or frame is required", i, tc.Name)
		}
	}
	return &c, nil
}

// Bytes 返回用例的原始帧字节
func (c Case) Bytes() ([]byte, error) {
	if c.Frame == nil {
		return esp.ParseHex(c.Hex)
	}
	data, err := esp.ParseHex(c.Frame.Data)
	if err != nil {
		return nil, err
	}
	return esp.Build(esp.Device(c.Frame.Origin), esp.Device(c.Frame.Destination), esp.PacketType(c.Frame.Type), data)
}


// Result 单条用例的执行结果
type Result struct {
	Name  string    `json:"name"`
	Kind  string    `json:"kind,omitempty"`
	Value esp.Value `json:"value,omitempty"`
	Error string    `json:"error,omitempty"`
	Pass  bool      `json:"pass"`
	Diff  string    `json:"diff,omitempty"`
}

// Run 执行全部用例
func (c *Corpus) Run() []Result {
	out := make([]Result, 0, len(c.Cases))
	for _, tc := range c.Cases {
		out = append(out, tc.Run())
	}
	return out
}

// Run 解析、解码并与期望比对
func (c Case) Run() Result {
	res := Result{Name: c.Name}
	raw, err := c.Bytes()
	if err != nil {
		res.Error = err.Error()
		res.Diff = "case bytes: " + err.Error()
		return res
	}

	var category string
	env, err := esp.Parse(raw)
	if err != nil {
		category = ErrorMalformed
	} else {
		res.Value, err = esp.Decode(env)
		if err != nil {
			category = ErrorShortPayload
			if !errors.Is(err, esp.ErrShortPayload) {
				category = err.Error()
			}
		}
	}
	if err != nil {
		res.Error = err.Error()
	}
	res.Kind = esp.KindOf(res.Value)

	var diffs []string
	if category != c.Expect.Error {
		diffs = append(diffs, fmt.Sprintf("error: got %q want %q", category, c.Expect.Error))
	}
	if c.Expect.Kind != "" && c.Expect.Kind != res.Kind {
		diffs = append(diffs, fmt.Sprintf("kind: got %q want %q", res.Kind, c.Expect.Kind))
	}
	if len(c.Expect.Value) > 0 {
		if d, err := valueDiff(res.Value, c.Expect.Value); err != nil {
			diffs = append(diffs, err.Error())
		} else if d != "" {
			diffs = append(diffs, d)
		}
	}
	res.Diff = strings.Join(diffs, "; ")
	res.Pass = len(diffs) == 0
	return res
}

// valueDiff 以 JSON 形式比较期望字段子集
func valueDiff(v esp.Value, want map[string]any) (string, error) {
	got, err := normalize(v)
	if err != nil {
		return "", err
	}
	exp, err := normalize(want)
	if err != nil {
		return "", err
	}
	sub := make(map[string]any, len(exp))
	for k := range exp {
		sub[k] = got[k]
	}
	return cmp.Diff(exp, sub), nil
}

func normalize(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("replay: marshal value: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("replay: value is not an object: %w", err)
	}
	return out, nil
}

// Summary 通过/失败计数
func Summary(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.Pass {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
