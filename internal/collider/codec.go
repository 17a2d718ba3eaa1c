package collider

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// .col 文件格式
//
// 所有字段都是小端 uint32：
//
//	word 0  版本号，必须为 1
//	word 1  保留（对齐填充），写 0
//	word 2  offsetX
//	word 3  offsetY
//	word 4  width
//	word 5  height
//	word 6… pitch*height 个掩码字，行优先
//
// pitch 不写入文件，读取时按 PitchFor(width) 重新计算。
const (
	// FormatVersion 当前 .col 格式版本
	FormatVersion = 1

	// MaxDimension 读取时允许的最大宽/高，超出视为损坏文件
	MaxDimension = 1 << 14

	headerWords = 6
)

var (
	// ErrFormat 版本号不受支持
	ErrFormat = errors.New("collider: unsupported format version")

	// ErrCorrupt 文件头或掩码数据被截断，或尺寸明显不合理
	ErrCorrupt = errors.New("collider: corrupt data")

	// ErrTooLarge 掩码尺寸或偏移超过 MaxDimension，写出后无法再读回
	ErrTooLarge = errors.New("collider: mask exceeds size limit")
)

// byteOrder .col 文件字节序
var byteOrder = binary.LittleEndian

// fileHeader .col 文件头
type fileHeader struct {
	Version  uint32
	Reserved uint32
	OffsetX  uint32
	OffsetY  uint32
	Width    uint32
	Height   uint32
}

// Encode 把掩码写成 .col 格式
//
// 参数:
//   - w: 输出目标
//   - m: 要写入的掩码
//
// 返回:
//   - error: 写入失败时返回错误；尺寸超过 MaxDimension 时返回 ErrTooLarge，不写入任何字节
func Encode(w io.Writer, m *BitMask) error {
	if m == nil {
		return fmt.Errorf("failed to encode collider: nil mask")
	}
	if !withinLimit(m) {
		return fmt.Errorf("failed to encode collider: %w: %s exceeds %d", ErrTooLarge, m, MaxDimension)
	}

	bw := bufio.NewWriter(w)

	header := fileHeader{
		Version: FormatVersion,
		OffsetX: m.offsetX,
		OffsetY: m.offsetY,
		Width:   m.width,
		Height:  m.height,
	}
	if err := binary.Write(bw, byteOrder, &header); err != nil {
		return fmt.Errorf("failed to write collider header: %w", err)
	}

	if err := binary.Write(bw, byteOrder, m.bits); err != nil {
		return fmt.Errorf("failed to write collider payload: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush collider data: %w", err)
	}
	return nil
}

// withinLimit 报告掩码能否被 Decode 接受
func withinLimit(m *BitMask) bool {
	return m.width <= MaxDimension && m.height <= MaxDimension &&
		m.offsetX <= MaxDimension && m.offsetY <= MaxDimension
}

// Decode 从 r 读取一个 .col 掩码
//
// 返回:
//   - *BitMask: 完整读取的掩码
//   - error: 版本不符返回 ErrFormat，数据截断返回 ErrCorrupt，
//     其他读取错误原样包装；出错时不会返回部分掩码
func Decode(r io.Reader) (*BitMask, error) {
	var header fileHeader
	if err := binary.Read(r, byteOrder, &header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		return nil, fmt.Errorf("failed to read collider header: %w", err)
	}

	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFormat, header.Version, FormatVersion)
	}

	if header.Width > MaxDimension || header.Height > MaxDimension ||
		header.OffsetX > MaxDimension || header.OffsetY > MaxDimension {
		return nil, fmt.Errorf("%w: dimensions %dx%d (offset %d,%d) exceed %d",
			ErrCorrupt, header.Width, header.Height, header.OffsetX, header.OffsetY, MaxDimension)
	}

	m := newBitMask(int(header.OffsetX), int(header.OffsetY), int(header.Width), int(header.Height))

	if err := binary.Read(r, byteOrder, m.bits); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: payload shorter than %d words", ErrCorrupt, len(m.bits))
		}
		return nil, fmt.Errorf("failed to read collider payload: %w", err)
	}

	return m, nil
}

// LoadFile 从磁盘读取 .col 文件
//
// 参数:
//   - path: 文件路径，如 "data/collider/bag_3.col"
//
// 返回:
//   - *BitMask: 读取到的掩码
//   - error: 文件不存在时可用 errors.Is(err, fs.ErrNotExist) 判断
func LoadFile(path string) (*BitMask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collider file %s: %w", path, err)
	}
	defer f.Close()

	m, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to load collider %s: %w", path, err)
	}
	return m, nil
}

// Load 从 fs.FS（例如嵌入的资源）读取 .col 文件
func Load(fsys fs.FS, name string) (*BitMask, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open collider file %s: %w", name, err)
	}
	defer f.Close()

	m, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to load collider %s: %w", name, err)
	}
	return m, nil
}

// SaveFile 把掩码写入 path
//
// 先写入同目录的临时文件再重命名，写到一半失败时不会留下残缺的 .col 文件。
func SaveFile(path string, m *BitMask) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create collider file %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to save collider %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save collider %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save collider %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save collider %s: %w", path, err)
	}
	return nil
}

// MarshalBinary 实现 encoding.BinaryMarshaler，输出 .col 格式字节
func (m *BitMask) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow((headerWords + len(m.bits)) * 4)
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary 实现 encoding.BinaryUnmarshaler
// 失败时 m 保持不变。
func (m *BitMask) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}
