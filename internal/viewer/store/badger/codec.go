package badger

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/sceneview/internal/viewer/store"
)

type valueKind uint8

const (
	kindBox valueKind = iota + 1
	kindColor
	kindFloat
	kindString
	kindInt
)

// Gob drops zero values behind pointers, so the kind selects which plain
// field carries the value.
type wireValue struct {
	HasIndex    bool
	IndexString bool
	IndexInt    uint64
	IndexStr    string

	Kind  valueKind
	Box   store.Box3
	Color [4]uint8
	Float float32
	Str   string
	Int   int32
}

type wireBatch struct {
	Time   int64
	MsgID  [16]byte
	Values []wireValue
}

func encodeBatch(b store.FieldBatch) ([]byte, error) {
	w := wireBatch{Time: int64(b.Time), MsgID: b.MsgID, Values: make([]wireValue, len(b.Values))}
	for i, v := range b.Values {
		wv := &w.Values[i]
		if v.Index != nil {
			wv.HasIndex = true
			if s, ok := v.Index.Str(); ok {
				wv.IndexString = true
				wv.IndexStr = s
			} else {
				wv.IndexInt, _ = v.Index.Int()
			}
		}
		switch val := v.Value.(type) {
		case store.Box3:
			wv.Kind, wv.Box = kindBox, val
		case [4]uint8:
			wv.Kind, wv.Color = kindColor, val
		case float32:
			wv.Kind, wv.Float = kindFloat, val
		case string:
			wv.Kind, wv.Str = kindString, val
		case int32:
			wv.Kind, wv.Int = kindInt, val
		default:
			return nil, fmt.Errorf("%w: cannot persist %T", store.ErrComponentType, v.Value)
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeBatch(data []byte) (store.FieldBatch, error) {
	var w wireBatch
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return store.FieldBatch{}, fmt.Errorf("%w: %v", store.ErrMalformedComponent, err)
	}
	b := store.FieldBatch{Time: store.TimeInt(w.Time), MsgID: uuid.UUID(w.MsgID), Values: make([]store.IndexedValue, len(w.Values))}
	for i, wv := range w.Values {
		if wv.HasIndex {
			idx := store.IntIndex(wv.IndexInt)
			if wv.IndexString {
				idx = store.StringIndex(wv.IndexStr)
			}
			b.Values[i].Index = &idx
		}
		switch wv.Kind {
		case kindBox:
			b.Values[i].Value = wv.Box
		case kindColor:
			b.Values[i].Value = wv.Color
		case kindFloat:
			b.Values[i].Value = wv.Float
		case kindString:
			b.Values[i].Value = wv.Str
		case kindInt:
			b.Values[i].Value = wv.Int
		default:
			return store.FieldBatch{}, fmt.Errorf("%w: value kind %d", store.ErrMalformedComponent, wv.Kind)
		}
	}
	return b, nil
}
