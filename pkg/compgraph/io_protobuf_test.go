package compgraph

import (
	"bytes"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

func tripDescriptor(t *testing.T) protoreflect.MessageDescriptor {
	t.Helper()
	fdp := &descriptorpb.FileDescriptorProto{
		Name:   proto.String("trip.proto"),
		Syntax: proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Trip"),
			Field: []*descriptorpb.FieldDescriptorProto{
				{
					Name:   proto.String("edge_id"),
					Number: proto.Int32(1),
					Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
					Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				},
				{
					Name:   proto.String("length"),
					Number: proto.Int32(2),
					Type:   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE.Enum(),
					Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				},
			},
		}},
	}
	fd, err := protodesc.NewFile(fdp, nil)
	if err != nil {
		t.Fatalf("building descriptor: %v", err)
	}
	return fd.Messages().ByName("Trip")
}

func TestProtobufSourceDecodesDelimitedMessages(t *testing.T) {
	desc := tripDescriptor(t)

	var buf bytes.Buffer
	for _, edge := range []string{"e1", "e2"} {
		msg := dynamicpb.NewMessage(desc)
		msg.Set(desc.Fields().ByName("edge_id"), protoreflect.ValueOfString(edge))
		msg.Set(desc.Fields().ByName("length"), protoreflect.ValueOfFloat64(1.5))
		data, err := proto.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		buf.Write(protowire.AppendVarint(nil, uint64(len(data))))
		buf.Write(data)
	}

	rows, err := Collect(NewProtobufLineSource(&buf, desc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(rows), rows)
	}
	if s, _ := rows[0]["edge_id"].AsString(); s != "e1" {
		t.Errorf("expected edge_id e1, got %v", rows[0])
	}
	if f, _ := rows[1]["length"].AsFloat(); f != 1.5 {
		t.Errorf("expected length 1.5, got %v", rows[1])
	}
}

func TestReadVarintMultiByte(t *testing.T) {
	// 300 encodes as 0xAC 0x02.
	n, err := readVarint(bytes.NewReader([]byte{0xAC, 0x02}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 300 {
		t.Errorf("expected 300, got %d", n)
	}
}
